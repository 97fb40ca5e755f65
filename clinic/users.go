package clinic

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

const usersHeader = "user_id,username,password,role"

// ReadUsers parses a users file. Lines with an unknown role are logged and skipped.
func ReadUsers(r io.Reader, log *slog.Logger) []*User {
	log = orDiscard(log)
	var users []*User
	eachDataLine(r, log, func(lineNo int, line string) {
		f := splitFields(line, 4)
		id, err := strconv.Atoi(strings.TrimSpace(f[0]))
		if err != nil {
			log.Warn("skipping malformed user line", slog.Int("line", lineNo), slog.String("reason", "invalid user id"), slog.String("value", f[0]))
			return
		}
		u, err := NewUserFromRoleName(id, f[1], f[2], f[3])
		if err != nil {
			log.Warn("skipping user", slog.Int("line", lineNo), slog.Int("user_id", id), slog.String("reason", err.Error()))
			return
		}
		users = append(users, u)
	})
	return users
}

func LoadUsers(path string, log *slog.Logger) []*User {
	var users []*User
	log = orDiscard(log).With(slog.String("file", path))
	loadFile(path, log, func(r io.Reader) { users = ReadUsers(r, log) })
	return users
}

func WriteUsers(w io.Writer, users []*User) error {
	if _, err := fmt.Fprintln(w, usersHeader); err != nil {
		return err
	}
	for _, u := range users {
		if _, err := fmt.Fprintf(w, "%d,%s,%s,%s\n", u.ID, u.Username, u.PasswordHash, u.Role()); err != nil {
			return err
		}
	}
	return nil
}

func SaveUsers(path string, users []*User) error {
	return writeFileAtomic(path, func(w io.Writer) error { return WriteUsers(w, users) })
}

func FindUser(users []*User, id int) *User {
	for _, u := range users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// FindUserByName matches usernames case-insensitively.
func FindUserByName(users []*User, username string) *User {
	want := strings.ToLower(strings.TrimSpace(username))
	for _, u := range users {
		if strings.ToLower(u.Username) == want {
			return u
		}
	}
	return nil
}
