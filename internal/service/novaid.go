package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/gosimple/slug"
)

const (
	novaIDMaxLen   = 30
	novaIDAttempts = 8
	base36         = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateNovaID builds a handle from a person's name, or from the local part
// of their email when the name is empty, e.g. "ana.perez.42" or "anap.17".
func GenerateNovaID(name, email string) string {
	parts := nameParts(name, email)
	if len(parts) == 0 {
		return "user_" + randomBase36(6)
	}

	first := parts[0]
	last := ""
	if len(parts) > 1 {
		last = parts[1]
	}

	formats := []string{
		first + last,
		first + "." + last,
		first + "_" + last,
		first + initial(last),
	}
	handle := strings.TrimRight(formats[rand.IntN(len(formats))], "._")

	id := fmt.Sprintf("%s.%02d", handle, 10+rand.IntN(90))
	if len(id) > novaIDMaxLen {
		id = id[:novaIDMaxLen]
	}
	return id
}

func nameParts(name, email string) []string {
	var raw []string
	switch {
	case strings.TrimSpace(name) != "":
		raw = strings.Fields(name)
	case email != "":
		local, _, _ := strings.Cut(email, "@")
		raw = strings.Split(local, ".")
	}

	var parts []string
	for _, p := range raw {
		// slug transliterates accents, so "José" becomes "jose"
		clean := strings.ReplaceAll(slug.Make(p), "-", "")
		if clean != "" {
			parts = append(parts, clean)
		}
	}
	return parts
}

func initial(s string) string {
	if s == "" {
		return ""
	}
	return s[:1]
}

func randomBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.IntN(len(base36))]
	}
	return string(b)
}

// uniqueNovaID retries GenerateNovaID until exists reports a free handle.
func uniqueNovaID(ctx context.Context, name, email string, exists func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < novaIDAttempts; i++ {
		candidate := GenerateNovaID(name, email)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find a free nova id after %d attempts", novaIDAttempts)
}
