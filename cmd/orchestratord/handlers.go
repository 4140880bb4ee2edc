package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// orchestrateRequest is the body of POST /orchestrate.
type orchestrateRequest struct {
	Request string `json:"request"`
}

func (a *app) handleOrchestrate(c echo.Context) error {
	var req orchestrateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.Request == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "request field is required")
	}

	result, err := a.orch.Orchestrate(c.Request().Context(), req.Request)
	if err != nil {
		a.log.WithError(err).Error("orchestrate request failed")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (a *app) handleDeleteIntent(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "intent id is required")
	}
	if err := a.orch.DeleteIntent(c.Request().Context(), id); err != nil {
		a.log.WithError(err).WithField("intent_id", id).Error("delete intent failed")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *app) handleRevalidationStatus(c echo.Context) error {
	valid, invalid := a.revalid.LastCounts()
	return c.JSON(http.StatusOK, map[string]int{
		"valid_nodes":   valid,
		"invalid_nodes": invalid,
	})
}

func (a *app) handleWorkflowExecutionOrder(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "workflow id is required")
	}
	wf, err := a.flows.FindByID(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if wf == nil {
		return echo.NewHTTPError(http.StatusNotFound, "workflow metamodel not found")
	}
	order, err := a.flows.ExecutionOrder(*wf)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"acyclic": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"acyclic": true,
		"order":   order,
	})
}
