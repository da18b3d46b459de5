package process

import (
	"strconv"
	"strings"
)

// DefaultPasswdPath is the account database consulted for user names.
const DefaultPasswdPath = "/etc/passwd"

// ParsePasswd maps numeric uids to login names from passwd(5) text.
// Malformed lines are skipped; the first entry for a uid wins.
func ParsePasswd(text string) map[uint32]string {
	users := make(map[uint32]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, ":", 4)
		if len(fields) < 3 || fields[0] == "" {
			continue
		}
		uid, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			continue
		}
		if _, seen := users[uint32(uid)]; !seen {
			users[uint32(uid)] = fields[0]
		}
	}
	return users
}

func userName(users map[uint32]string, uid uint32) string {
	if name, ok := users[uid]; ok {
		return name
	}
	return strconv.FormatUint(uint64(uid), 10)
}
