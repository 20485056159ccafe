// Package client talks to the lab daemon over its unix socket.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

type Client struct {
	socketPath string
	httpc      http.Client
}

func New(socketPath string) *Client {
	c := &Client{socketPath: socketPath}
	c.httpc = http.Client{
		Transport: &http.Transport{
			DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
				conn, err := net.Dial("unix", socketPath)
				if err != nil {
					if errors.Is(err, fs.ErrNotExist) {
						return nil, ErrDaemonNotRunning
					}
					if errors.Is(err, fs.ErrPermission) {
						return nil, ErrPermissionDenied
					}
					logrus.Errorf("failed to connect to unix socket: %v", err)
					return nil, err
				}
				return conn, err
			},
		},
	}
	return c
}

func (c *Client) Send(method string, path string, data string) (string, error) {
	logrus.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"data":   data,
		"unix":   c.socketPath,
	}).Debug("sending request")

	var resp *http.Response
	var err error

	switch method {
	case http.MethodGet:
		resp, err = c.httpc.Get("http://unix" + path)
	case http.MethodPut:
		req, err2 := http.NewRequest(http.MethodPut, "http://unix"+path, strings.NewReader(data))
		if err2 != nil {
			return "", fmt.Errorf("failed to create request: %w", err2)
		}
		resp, err = c.httpc.Do(req)
	default:
		return "", fmt.Errorf("unknown method: %s", method)
	}

	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	body := string(b)

	code := resp.StatusCode

	logrus.WithFields(logrus.Fields{
		"code": code,
		"body": body,
	}).Debug("got response")

	if code == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrNotFound, body)
	}
	if code < 200 || code > 299 {
		return "", fmt.Errorf("got %d: %s", code, body)
	}

	return body, nil
}

func (c *Client) Get(path string) (string, error) {
	return c.Send(http.MethodGet, path, "")
}

func (c *Client) Put(path string, data string) (string, error) {
	return c.Send(http.MethodPut, path, data)
}
