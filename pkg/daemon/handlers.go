package daemon

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hoopdev/ktaga-lab/pkg/magnet"
	"github.com/hoopdev/ktaga-lab/pkg/param"
	"github.com/hoopdev/ktaga-lab/pkg/version"
)

func (s *Server) getField(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.IndentedJSON(http.StatusOK, s.rig.Magnet.Field())
}

func (s *Server) setField(c *gin.Context) {
	var field float64
	if err := c.BindJSON(&field); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rig.Magnet.SetField(field); err != nil {
		if errors.Is(err, magnet.ErrFieldRange) {
			c.IndentedJSON(http.StatusBadRequest, err.Error())
			_ = c.AbortWithError(http.StatusBadRequest, err)
			return
		}
		logrus.Errorf("setField failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("set field to %g", field)
	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("field set to %g", field))
}

func (s *Server) getMeasuredField(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	field, err := s.rig.Magnet.MeasureField()
	if err != nil {
		logrus.Errorf("measureField failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, field)
}

func (s *Server) getAngle(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rig.Angle == nil {
		err := errors.New("no rotation stage configured")
		c.IndentedJSON(http.StatusNotFound, err.Error())
		_ = c.AbortWithError(http.StatusNotFound, err)
		return
	}

	c.IndentedJSON(http.StatusOK, s.rig.Angle.Angle())
}

func (s *Server) setAngle(c *gin.Context) {
	var deg float64
	if err := c.BindJSON(&deg); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rig.Angle == nil {
		err := errors.New("no rotation stage configured")
		c.IndentedJSON(http.StatusNotFound, err.Error())
		_ = c.AbortWithError(http.StatusNotFound, err)
		return
	}

	if err := s.rig.Angle.SetAngle(deg); err != nil {
		if errors.Is(err, magnet.ErrMoveTimeout) {
			c.IndentedJSON(http.StatusGatewayTimeout, err.Error())
			_ = c.AbortWithError(http.StatusGatewayTimeout, err)
			return
		}
		logrus.Errorf("setAngle failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("set angle to %g deg", deg)
	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("angle set to %g deg", deg))
}

func (s *Server) getInstruments(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.rig.Instruments))
	for name := range s.rig.Instruments {
		names = append(names, name)
	}
	c.IndentedJSON(http.StatusOK, names)
}

func (s *Server) getParamNames(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.rig.Instruments[c.Param("name")]
	if !ok {
		err := fmt.Errorf("unknown instrument %q", c.Param("name"))
		c.IndentedJSON(http.StatusNotFound, err.Error())
		_ = c.AbortWithError(http.StatusNotFound, err)
		return
	}

	c.IndentedJSON(http.StatusOK, table.Names())
}

func (s *Server) getParam(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.rig.Instruments[c.Param("name")]
	if !ok {
		err := fmt.Errorf("unknown instrument %q", c.Param("name"))
		c.IndentedJSON(http.StatusNotFound, err.Error())
		_ = c.AbortWithError(http.StatusNotFound, err)
		return
	}

	value, err := table.Get(c.Param("param"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, param.ErrUnknown) || errors.Is(err, param.ErrNotGettable) {
			status = http.StatusNotFound
		}
		c.IndentedJSON(status, err.Error())
		_ = c.AbortWithError(status, err)
		return
	}

	c.IndentedJSON(http.StatusOK, value)
}

func (s *Server) setParam(c *gin.Context) {
	var value any
	if err := c.BindJSON(&value); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.rig.Instruments[c.Param("name")]
	if !ok {
		err := fmt.Errorf("unknown instrument %q", c.Param("name"))
		c.IndentedJSON(http.StatusNotFound, err.Error())
		_ = c.AbortWithError(http.StatusNotFound, err)
		return
	}

	// JSON has no integer type. Parameters with an integer template still
	// expect an int, so whole numbers are narrowed here at the API boundary.
	if f, isFloat := value.(float64); isFloat && f == math.Trunc(f) {
		if spec, found := table.Lookup(c.Param("param")); found && strings.Contains(spec.SetFmt, "%d") {
			value = int(f)
		}
	}

	if err := table.Set(c.Param("param"), value); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, param.ErrUnknown), errors.Is(err, param.ErrNotSettable):
			status = http.StatusNotFound
		case errors.Is(err, param.ErrInvalid):
			status = http.StatusBadRequest
		}
		c.IndentedJSON(status, err.Error())
		_ = c.AbortWithError(status, err)
		return
	}

	logrus.Infof("set %s/%s to %v", c.Param("name"), c.Param("param"), value)
	c.IndentedJSON(http.StatusCreated, "ok")
}

func (s *Server) getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
