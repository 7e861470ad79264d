package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"securewipe/internal/config"
	"securewipe/internal/logging"
	"securewipe/internal/progress"
	"securewipe/internal/reporting"
	"securewipe/internal/security"
	"securewipe/internal/wipe"
)

type wipeFlags struct {
	algorithm  string
	passes     int
	bufferKB   int
	fast       bool
	force      bool
	verify     bool
	maxSpeed   float64
	targetType string
}

func newWipeCmd() *cobra.Command {
	f := &wipeFlags{}
	cmd := &cobra.Command{
		Use:   "wipe <путь>",
		Short: "Затереть файл или блочное устройство",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWipe(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.algorithm, "algorithm", "a", "", "Алгоритм (zero/random/dod5220/gutmann/custom)")
	cmd.Flags().IntVarP(&f.passes, "passes", "p", 0, "Количество проходов для custom")
	cmd.Flags().IntVarP(&f.bufferKB, "buffer-size", "b", 0, "Размер буфера в KB (0 = автоматически)")
	cmd.Flags().BoolVar(&f.fast, "fast", false, "Быстрый режим: без sync после проходов, реже события")
	cmd.Flags().BoolVarP(&f.force, "force", "f", false, "Пропустить подтверждение")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "Проверка после затирания (не реализована)")
	cmd.Flags().Float64Var(&f.maxSpeed, "max-speed", 0, "Ограничение скорости, MB/s (0 = без ограничения)")
	cmd.Flags().StringVar(&f.targetType, "type", "auto", "Тип цели (auto/file/block)")
	return cmd
}

// loadConfig: файл, затем профиль, затем явно заданные флаги
func loadConfig(cmd *cobra.Command, f *wipeFlags) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка загрузки конфигурации")
	}

	if profile != "" {
		if err := config.ApplyProfile(cfg, profile); err != nil {
			return nil, errors.Wrapf(err, "ошибка применения профиля %s", profile)
		}
	}

	fl := cmd.Flags()
	if fl.Changed("algorithm") {
		cfg.Wipe.Algorithm = f.algorithm
	}
	if fl.Changed("passes") {
		cfg.Wipe.Passes = f.passes
		// -p без -a означает custom
		if !fl.Changed("algorithm") && cfg.Wipe.Algorithm != "custom" {
			cfg.Wipe.Algorithm = "custom"
		}
	}
	if fl.Changed("buffer-size") {
		cfg.Wipe.BufferSizeKB = f.bufferKB
	}
	if fl.Changed("fast") {
		cfg.Wipe.Fast = f.fast
	}
	if fl.Changed("max-speed") {
		cfg.Wipe.MaxSpeedMBps = f.maxSpeed
	}
	if fl.Changed("json") {
		cfg.Wipe.JSON = jsonOutput
	}

	if err := config.Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "невалидная конфигурация")
	}
	return cfg, nil
}

func parseTargetType(s string) (wipe.TargetType, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return wipe.TargetAuto, nil
	case "file":
		return wipe.TargetRegularFile, nil
	case "block", "device":
		return wipe.TargetBlockDevice, nil
	default:
		return wipe.TargetAuto, errors.Newf("unknown target type %q", s)
	}
}

func newReporter(json bool) progress.Reporter {
	if json {
		return progress.NewJSON(os.Stdout)
	}
	return progress.NewHuman(os.Stdout)
}

func runWipe(cmd *cobra.Command, target string, f *wipeFlags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return withCode(EXIT_CONFIG, err)
	}

	logger, err := logging.New(cfg.Logging, verbose)
	if err != nil {
		return withCode(EXIT_CONFIG, errors.Wrap(err, "ошибка инициализации логгера"))
	}
	defer logger.Close()

	sc, err := cfg.Wipe.SessionConfig()
	if err != nil {
		return withCode(EXIT_CONFIG, err)
	}
	if sc.TargetType, err = parseTargetType(f.targetType); err != nil {
		return withCode(EXIT_CONFIG, err)
	}

	reporter := newReporter(sc.JSONMode)
	// Ошибку показывает вызывающая сторона, движок событие error не шлёт
	fail := func(err error) error {
		_ = reporter.Report(progress.Error{Message: err.Error()})
		return &exitError{code: exitCodeFor(err), err: err, reported: true}
	}

	logger.Info("Запуск securewipe",
		zap.String("version", Version),
		zap.String("target", target),
		zap.String("algorithm", sc.Algorithm.ID()),
		zap.String("profile", profile))

	// Тип нужен для проверок и подтверждения; ошибку открытия вернёт wipe.New
	kind := sc.TargetType
	if kind == wipe.TargetAuto {
		if t, err := (wipe.NativeProbe{}).Classify(target); err == nil {
			kind = t
		}
	}
	if kind != wipe.TargetAuto {
		if err := security.CheckTarget(target, kind); err != nil {
			return fail(err)
		}
	}

	if !f.force {
		ok, err := confirm(os.Stdin, os.Stderr, target, kind, sc.Algorithm)
		if err != nil {
			return fail(err)
		}
		if !ok {
			logger.Info("Операция отменена пользователем")
			return nil
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := wipe.New(target, sc, wipe.Options{Reporter: reporter, Logger: logger.Logger})
	if err != nil {
		return fail(err)
	}

	start := time.Now()
	summary, runErr := s.Run(ctx)
	end := time.Now()

	if cfg.Reporting.Enabled {
		r := reporting.Generate(s, summary, runErr, start, end, exitCodeFor(runErr))
		r.Version = Version
		if path, err := reporting.Save(r, cfg.Reporting); err != nil {
			logger.Warn("Ошибка сохранения отчёта", zap.Error(err))
		} else {
			logger.Info("Отчёт сохранён", zap.String("file", path))
		}
	}

	if runErr != nil {
		return fail(runErr)
	}

	if f.verify {
		_ = reporter.Report(progress.Info{Message: "Verification not implemented"})
	}
	return nil
}
