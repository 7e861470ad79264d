package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"securewipe/internal/wipe"
)

const confirmWord = "WIPE"

// confirm спрашивает подтверждение; только точный ввод WIPE разрешает затирание
func confirm(in io.Reader, out io.Writer, target string, kind wipe.TargetType, alg wipe.Algorithm) (bool, error) {
	passes, err := alg.PassCount()
	if err != nil {
		return false, err
	}

	what := "файл"
	if kind == wipe.TargetBlockDevice {
		what = "блочное устройство"
	}
	fmt.Fprintf(out, "ВНИМАНИЕ: %s %s будет необратимо перезаписан (%s, проходов: %d).\n", what, target, alg, passes)
	fmt.Fprintf(out, "Type '%s' to confirm: ", confirmWord)

	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return false, errors.Wrap(err, "read confirmation")
		}
		return false, nil
	}
	return strings.TrimSpace(sc.Text()) == confirmWord, nil
}
