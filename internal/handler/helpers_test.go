package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-learn-api/internal/service"
)

func TestStatusForUploadErrors(t *testing.T) {
	cases := map[error]int{
		service.ErrUploadMissing:        fiber.StatusBadRequest,
		service.ErrUploadTooLarge:       fiber.StatusRequestEntityTooLarge,
		service.ErrUploadTypeNotAllowed: fiber.StatusUnsupportedMediaType,
		service.ErrUploadsDisabled:      fiber.StatusServiceUnavailable,
	}
	for err, want := range cases {
		status, ok := statusFor(fmt.Errorf("upload cover: %w", err))
		require.True(t, ok, err.Error())
		require.Equal(t, want, status, err.Error())
	}

	_, ok := statusFor(errors.New("disk on fire"))
	require.False(t, ok)
}
