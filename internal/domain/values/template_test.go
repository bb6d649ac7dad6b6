package values

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseTemplate_Placeholders(t *testing.T) {
	tmpl, err := ParseTemplate("python3 {root}/../build.py {install} {root}")
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "install"}, tmpl.Placeholders())
}

func Test_ParseTemplate_Invalid(t *testing.T) {
	tests := map[string]string{
		"unclosed":     "python3 {root/build.py",
		"unmatched":    "python3 root}",
		"uppercase":    "{ROOT}",
		"empty":        "{}",
		"unclosed env": "${HOME",
		"space in key": "{ro ot}",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTemplate(input)
			assert.Error(t, err)
		})
	}
}

func Test_Template_Execute(t *testing.T) {
	tmpl, err := ParseTemplate("{{literal}} {root}/bin:${HOME}/x:$PATH {install}")
	require.NoError(t, err)

	out, err := tmpl.Execute(func(key string) (string, bool, error) {
		if key == "install" {
			return "", true, nil
		}
		return "/opt/pkg", false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "{literal} /opt/pkg/bin:${HOME}/x:$PATH {install}", out)
}

func Test_Template_Execute_Error(t *testing.T) {
	tmpl, err := ParseTemplate("{root}")
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = tmpl.Execute(func(string) (string, bool, error) { return "", false, boom })
	assert.ErrorIs(t, err, boom)
}

func Test_Template_Empty(t *testing.T) {
	tmpl, err := ParseTemplate("")
	require.NoError(t, err)
	assert.Empty(t, tmpl.Placeholders())

	out, err := tmpl.Execute(nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}
