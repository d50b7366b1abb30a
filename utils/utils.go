package utils

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
)

// Base64Decode decodes standard or URL-safe base64 with or without padding.
// Line breaks and other whitespace inside the input are ignored.
func Base64Decode(b64 string) ([]byte, error) {
	b64 = strings.Join(strings.Fields(b64), "")
	stdb64 := b64
	if pad := len(b64) % 4; pad != 0 {
		stdb64 += strings.Repeat("=", 4-pad)
	}

	b, err := base64.StdEncoding.DecodeString(stdb64)
	if err != nil {
		return base64.URLEncoding.DecodeString(stdb64)
	}
	return b, nil
}

// ReadLines returns every line of r as is, without the line terminator.
// Blank and indented lines are kept so callers can decide how to filter them.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// Set the Scanner to split on newline characters
	scanner.Split(bufio.ScanLines)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error in parsing lines: %w", err)
	}
	return lines, nil
}

// ParseFileByNewline reads fileName line by line. "-" means stdin.
func ParseFileByNewline(fileName string) ([]string, error) {
	if fileName == "-" {
		return ReadLines(os.Stdin)
	}

	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("error in reading file: %w", err)
	}
	defer file.Close()

	return ReadLines(file)
}

func WriteIntoFile(fileName string, data []byte) error {
	var err error
	switch fileName {
	case "-":
		_, err = os.Stdout.Write(data)
	default:
		err = os.WriteFile(fileName, data, 0644)
	}
	if err != nil {
		return err
	}
	return nil
}
