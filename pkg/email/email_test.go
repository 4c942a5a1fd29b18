package email

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResetLinkEscapesToken(t *testing.T) {
	require.Equal(t,
		"https://echoing.example/reset-password?token=a%2Bb",
		ResetLink("https://echoing.example", "a+b"))
}

func TestRenderResetEscapesUsername(t *testing.T) {
	html, err := renderReset(resetData{
		Username:   "<script>",
		Link:       "https://echoing.example/reset-password?token=abc",
		TTLMinutes: 30,
	})
	require.NoError(t, err)
	require.Contains(t, html, "Hi &lt;script&gt;,")
	require.Contains(t, html, "expires in 30 minutes")
	require.Contains(t, html, `href="https://echoing.example/reset-password?token=abc"`)
}
