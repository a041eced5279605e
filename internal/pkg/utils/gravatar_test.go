package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetGravatarURL(t *testing.T) {
	// md5("myemailaddress@example.com") from the Gravatar docs
	want := "https://www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?s=80&d=identicon"
	assert.Equal(t, want, GetGravatarURL("  MyEmailAddress@example.com ", 0))
	assert.Contains(t, GetGravatarURL("a@b.test", 200), "?s=200&")
}
