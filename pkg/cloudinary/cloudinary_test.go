package cloudinary

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPublicIDSanitisesName(t *testing.T) {
	at := time.Unix(1700000000, 0)

	require.Equal(t, "intro-to-go-1700000000", PublicID("Intro to Go!.PNG", at))
	require.Equal(t, "cover-1700000000", PublicID("???.jpg", at))
	require.Equal(t, "notes-1700000000", PublicID("../uploads/notes.jpeg", at))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)
	require.False(t, Config{CloudName: "demo"}.Enabled())
}
