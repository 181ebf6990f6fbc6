package fmc

import (
	"bufio"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// loadCookieFile reads a Netscape-format cookie file (the format the
// corporate auth helper exports) into cookies usable by the session jar.
// Expired entries are dropped.
func loadCookieFile(path string) ([]*http.Cookie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "fmc: open cookie file")
	}
	defer f.Close() //nolint:errcheck

	var cookies []*http.Cookie
	now := time.Now()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// #HttpOnly_ prefixed lines are still cookies.
		line = strings.TrimPrefix(line, "#HttpOnly_")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// domain, include-subdomains, path, secure, expires, name, value
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			continue
		}

		expires, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			continue
		}
		if expires > 0 && time.Unix(expires, 0).Before(now) {
			continue
		}

		cookies = append(cookies, &http.Cookie{
			Domain: fields[0],
			Path:   fields[2],
			Secure: strings.EqualFold(fields[3], "TRUE"),
			Name:   fields[5],
			Value:  fields[6],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "fmc: read cookie file")
	}
	return cookies, nil
}
