package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePasswd(t *testing.T) {
	text := `# comment
root:x:0:0:root:/root:/bin/bash
daemon:x:1:1:daemon:/usr/sbin:/usr/sbin/nologin

broken-line
nouid:x:abc:1::/:/bin/false
:x:5:5::/:/bin/false
alice:x:1000:1000:Alice,,,:/home/alice:/bin/zsh
alias:x:1000:1000::/home/alias:/bin/sh
`
	users := ParsePasswd(text)
	assert.Equal(t, map[uint32]string{0: "root", 1: "daemon", 1000: "alice"}, users)
}

func TestUserName(t *testing.T) {
	users := map[uint32]string{0: "root"}
	assert.Equal(t, "root", userName(users, 0))
	assert.Equal(t, "4242", userName(users, 4242))
	assert.Equal(t, "7", userName(nil, 7))
}
