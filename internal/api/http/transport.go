package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
)

// InProcessTransport serves client requests straight from a fiber app without a socket.
type InProcessTransport struct {
	App *fiber.App
}

// RoundTrip implements http.RoundTripper.
func (t InProcessTransport) RoundTrip(req *nethttp.Request) (*nethttp.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	resp, err := t.App.Test(req, -1)
	if err != nil {
		return nil, err
	}
	resp.Request = req
	return resp, nil
}
