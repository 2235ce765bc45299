package feed

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadCookieHeader reads a session cookie file and renders a Cookie header.
// Netscape cookies.txt files (tab separated, seven fields) are converted to
// name=value pairs; any other non-comment line is used verbatim.
func LoadCookieHeader(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var pairs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#HttpOnly_") {
			line = strings.TrimPrefix(line, "#HttpOnly_")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) == 7 {
			pairs = append(pairs, fields[5]+"="+fields[6])
			continue
		}
		pairs = append(pairs, strings.TrimPrefix(line, "Cookie: "))
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read cookie file: %w", err)
	}
	return strings.Join(pairs, "; "), nil
}
