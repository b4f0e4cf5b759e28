package types

import (
	"bufio"
	"log"
	"os"
	"regexp"
)

const (
	IS_UNKNOWN = -1
	IS_SRT     = 1
)

var srt_sig = regexp.MustCompile(`^\x{feff}?\d+\s*\r?\n\d{2}:\d{2}:\d{2},\d{3}\s*-->`)

func EvinceFileType(fn string) int {
	res := IS_UNKNOWN
	file, err := os.Open(fn)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()
	fh := bufio.NewReader(file)
	sig, _ := fh.Peek(64) //read a few bytes without consuming
	if srt_sig.Match(sig) {
		res = IS_SRT
	}
	return res
}
