package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"securewipe/internal/wipe"
)

const (
	Version = "1.0.0"
	AppName = "securewipe"

	// Exit codes
	EXIT_SUCCESS  = 0
	EXIT_ERROR    = 1
	EXIT_CONFIG   = 2
	EXIT_CANCELED = 130
)

var (
	verbose    bool
	configPath string
	profile    string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:           AppName,
	Short:         "securewipe - безопасное затирание файлов и блочных устройств",
	Long:          "Затирание файла или блочного устройства одним или несколькими проходами (zero, random, DoD 5220.22-M, Gutmann, custom)",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Подробный вывод")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Путь к конфигурации (YAML)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "Профиль производительности (safe/balanced/fast)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Вывод событий в формате JSON lines")

	rootCmd.AddCommand(newWipeCmd(), newAlgorithmsCmd())
}

// exitError несёт код выхода до main; reported означает, что ошибка уже выведена
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCodeFor: 2 конфигурация, 130 отмена, 1 прочие ошибки
func exitCodeFor(err error) int {
	if err == nil {
		return EXIT_SUCCESS
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch wipe.KindOf(err) {
	case wipe.KindConfig:
		return EXIT_CONFIG
	case wipe.KindCanceled:
		return EXIT_CANCELED
	default:
		return EXIT_ERROR
	}
}

func main() {
	err := rootCmd.Execute()
	var ee *exitError
	if err != nil && !(errors.As(err, &ee) && ee.reported) {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
	}
	os.Exit(exitCodeFor(err))
}
