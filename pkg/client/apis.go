package client

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

func (c *Client) SetField(field float64) (string, error) {
	return c.Put("/field", strconv.FormatFloat(field, 'g', -1, 64))
}

func (c *Client) GetField() (float64, error) {
	ret, err := c.Get("/field")
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to get field setpoint")
	}
	return parseFloatResponse(ret)
}

func (c *Client) MeasureField() (float64, error) {
	ret, err := c.Get("/field/measured")
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to measure field")
	}
	return parseFloatResponse(ret)
}

func (c *Client) SetAngle(deg float64) (string, error) {
	return c.Put("/angle", strconv.FormatFloat(deg, 'g', -1, 64))
}

func (c *Client) GetAngle() (float64, error) {
	ret, err := c.Get("/angle")
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to get angle")
	}
	return parseFloatResponse(ret)
}

func (c *Client) GetInstruments() ([]string, error) {
	ret, err := c.Get("/instruments")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to list instruments")
	}
	var names []string
	if err := json.Unmarshal([]byte(ret), &names); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal instrument list")
	}
	return names, nil
}

func (c *Client) GetParamNames(instrument string) ([]string, error) {
	ret, err := c.Get(fmt.Sprintf("/instruments/%s/params", instrument))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to list parameters of %s", instrument)
	}
	var names []string
	if err := json.Unmarshal([]byte(ret), &names); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal parameter list")
	}
	return names, nil
}

// GetParam returns the raw JSON value of an instrument parameter. The type
// depends on the parameter, so the caller decodes.
func (c *Client) GetParam(instrument, name string) (string, error) {
	ret, err := c.Get(fmt.Sprintf("/instruments/%s/params/%s", instrument, name))
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get %s/%s", instrument, name)
	}
	return ret, nil
}

func (c *Client) GetFloatParam(instrument, name string) (float64, error) {
	ret, err := c.GetParam(instrument, name)
	if err != nil {
		return 0, err
	}
	return parseFloatResponse(ret)
}

// SetParam sends a raw JSON value. Pass numbers as "1e9", strings quoted.
func (c *Client) SetParam(instrument, name, value string) (string, error) {
	return c.Put(fmt.Sprintf("/instruments/%s/params/%s", instrument, name), value)
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}

func parseFloatResponse(resp string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(resp), 64)
	if err != nil {
		return 0, pkgerrors.Errorf("unexpected response: %s", resp)
	}
	return v, nil
}
