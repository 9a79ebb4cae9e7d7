package bootstrap

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	analysisinadapter "peaklab/internal/modules/analysis/adapter/in"
	analysisoutadapter "peaklab/internal/modules/analysis/adapter/out"
	analysisusecase "peaklab/internal/modules/analysis/usecase"
	fitinadapter "peaklab/internal/modules/fit/adapter/in"
	fitservice "peaklab/internal/modules/fit/service"
	fitusecase "peaklab/internal/modules/fit/usecase"
	measurementinadapter "peaklab/internal/modules/measurement/adapter/in"
	measurementoutadapter "peaklab/internal/modules/measurement/adapter/out"
	measurementservice "peaklab/internal/modules/measurement/service"
	measurementusecase "peaklab/internal/modules/measurement/usecase"
	scaninadapter "peaklab/internal/modules/scan/adapter/in"
	scanusecase "peaklab/internal/modules/scan/usecase"
	sessioninadapter "peaklab/internal/modules/session/adapter/in"
	sessionoutadapter "peaklab/internal/modules/session/adapter/out"
	sessiondomain "peaklab/internal/modules/session/domain"
	sessionservice "peaklab/internal/modules/session/service"
	sessionusecase "peaklab/internal/modules/session/usecase"
	treeinadapter "peaklab/internal/modules/tree/adapter/in"
	treeoutadapter "peaklab/internal/modules/tree/adapter/out"
	treeservice "peaklab/internal/modules/tree/service"
	treeusecase "peaklab/internal/modules/tree/usecase"
	"peaklab/internal/platform/clock"
	"peaklab/internal/platform/config"
	"peaklab/internal/platform/kind"
	uiapp "peaklab/internal/ui/app"
)

type App struct {
	Config         config.Config
	Layout         sessiondomain.Layout
	ScanCLI        scaninadapter.CLIHandler
	FitCLI         fitinadapter.CLIHandler
	MeasurementCLI measurementinadapter.CLIHandler
	TreeCLI        treeinadapter.CLIHandler
	SessionCLI     sessioninadapter.CLIHandler
	AnalysisCLI    analysisinadapter.CLIHandler
	AnalysisTUI    analysisinadapter.TUIHandler

	logger *zap.Logger
	index  *sessionoutadapter.SQLiteSessionIndex
}

func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := clock.SystemClock{}
	layout := sessiondomain.Layout{DataRoot: cfg.DataRoot(), SavedRoot: cfg.SavedRoot()}

	smoother, err := measurementservice.NewSmoother(cfg.Smoothing.Window, cfg.Smoothing.Order)
	if err != nil {
		return nil, fmt.Errorf("new smoother: %w", err)
	}
	measurementUC := measurementusecase.NewInteractor(measurementservice.NewMeasurementService(
		measurementoutadapter.NewFileDatasetReader(),
		smoother,
		cfg.RamanCutoff,
	))
	fitUC := fitusecase.NewInteractor(fitservice.NewPeakFitter())
	scanUC := scanusecase.NewInteractor(cfg.DefaultScans)

	treeUC := treeusecase.NewInteractor(
		treeservice.NewTreeService(treeoutadapter.NewOSFileSystem(), logger.Named("tree")),
		func(k kind.Kind, saved bool) string { return cfg.DomainRoot(k, saved) },
		cfg.Extensions,
	)

	index, err := sessionoutadapter.NewSQLiteSessionIndex(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new session index: %w", err)
	}
	sessionLogger := logger.Named("session")
	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewSessionService(clk, layout, sessionoutadapter.NewFileSessionStore(cfg.Extensions, sessionLogger), index, sessionLogger),
		treeUC,
		sessionoutadapter.NewXLSXPeakExporter(),
		sessionLogger,
	)

	analysisUC := analysisusecase.NewInteractor(analysisusecase.Dependencies{
		Measurement: measurementUC,
		Fit:         fitUC,
		Scans:       scanUC,
		Sessions:    sessionUC,
		Layout:      layout,
		Renderer:    analysisoutadapter.NewChartRenderer(analysisoutadapter.DefaultWidth, analysisoutadapter.DefaultHeight, logger.Named("plot")),
		Logger:      logger.Named("analysis"),
	})

	return &App{
		Config:         cfg,
		Layout:         layout,
		ScanCLI:        scaninadapter.NewCLIHandler(scanUC),
		FitCLI:         fitinadapter.NewCLIHandler(fitUC),
		MeasurementCLI: measurementinadapter.NewCLIHandler(measurementUC),
		TreeCLI:        treeinadapter.NewCLIHandler(treeUC),
		SessionCLI:     sessioninadapter.NewCLIHandler(sessionUC),
		AnalysisCLI:    analysisinadapter.NewCLIHandler(analysisUC),
		AnalysisTUI:    analysisinadapter.NewTUIHandler(analysisUC),
		logger:         logger,
		index:          index,
	}, nil
}

func (a *App) Close() error {
	_ = a.logger.Sync()
	return a.index.Close()
}

func RunTUI(ctx context.Context, app *App) error {
	if _, err := app.TreeCLI.ReconcileAll(ctx); err != nil {
		return err
	}
	model := uiapp.NewModel(app.Config.WorkspacePath, app.TreeCLI, app.AnalysisTUI)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
