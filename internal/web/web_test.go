package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, AdminTemplate, AdminPage{Title: "Tera <Turizm>", RegistrationEnabled: false}))

	html := buf.String()
	assert.Contains(t, html, "Tera &lt;Turizm&gt;")
	assert.Contains(t, html, `id="reservations-table"`)
	assert.NotContains(t, html, `id="register-button"`)
}
