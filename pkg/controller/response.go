package controller

import (
	"net/http"

	"github.com/sabormap/sabormap/pkg/server/router"
)

// Success writes data as a 200 JSON response.
func Success(c router.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// Created writes data as a 201 JSON response, used after resource creation.
func Created(c router.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

// NoContent writes a 204 response without a body.
func NoContent(c router.Context) error {
	return c.JSON(http.StatusNoContent, nil)
}

// Error maps err through MapError and writes the resulting response.
func Error(c router.Context, err error) error {
	statusCode, errorResponse := MapError(c.Request().Context(), err)
	return c.JSON(statusCode, errorResponse)
}
