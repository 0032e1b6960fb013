package pipeline

import (
	"log/slog"

	"github.com/joseph-ayodele/invoice-sentinel/constants"
	"github.com/joseph-ayodele/invoice-sentinel/internal/common"
	"github.com/joseph-ayodele/invoice-sentinel/internal/completion"
	"github.com/joseph-ayodele/invoice-sentinel/internal/extraction"
	"github.com/joseph-ayodele/invoice-sentinel/internal/metrics"
	"github.com/joseph-ayodele/invoice-sentinel/internal/modeselect"
	"github.com/joseph-ayodele/invoice-sentinel/internal/normalize"
	"github.com/joseph-ayodele/invoice-sentinel/internal/telemetry"
)

// New builds a Processor from config. An empty endpoint leaves the live
// gateway nil so its mock serves permanently; the mock's probe always
// reports unreachable, which keeps auto mode selection honest.
func New(cfg *common.Config, tel *telemetry.Telemetry, collector *metrics.Collector, logger *slog.Logger) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	override, forced, err := constants.ParseRunMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	mockExt := extraction.NewMock(logger)
	mockComp := completion.NewMock(logger)

	p := &Processor{
		Logger:         logger,
		Cfg:            cfg.Pipeline,
		MockExtraction: mockExt,
		MockCompletion: mockComp,
		Normalizer:     normalize.New(logger),
		Tel:            tel,
		Metrics:        collector,
		Override:       override,
		Forced:         forced,
	}

	var extProber modeselect.Prober = mockExt
	if cfg.Extraction.Endpoint != "" {
		live := extraction.NewClient(cfg.Extraction, tel, logger)
		p.LiveExtraction = live
		extProber = live
	}

	var compProber modeselect.Prober = mockComp
	if cfg.Completion.Endpoint != "" {
		live := completion.NewClient(cfg.Completion, tel, logger)
		p.LiveCompletion = live
		compProber = live
	}

	p.Selector = modeselect.NewSelector(extProber, compProber, cfg.Pipeline.ProbeTimeout, logger)
	return p, nil
}
