package supervisor

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bhuan/monad-plays-pokemon/internal/chain"
	"github.com/bhuan/monad-plays-pokemon/internal/config"
	"github.com/bhuan/monad-plays-pokemon/internal/emulator"
	"github.com/bhuan/monad-plays-pokemon/internal/frames"
	"github.com/bhuan/monad-plays-pokemon/internal/hub"
	"github.com/bhuan/monad-plays-pokemon/internal/model"
	"github.com/bhuan/monad-plays-pokemon/internal/relay"
	"github.com/bhuan/monad-plays-pokemon/internal/server"
	"github.com/bhuan/monad-plays-pokemon/internal/storage"
	"github.com/bhuan/monad-plays-pokemon/internal/votes"
)

const romFileName = "pokemon-red.gb"

// Supervisor is the composition root: it boots components in
// dependency order, wires the channels between them, and owns graceful
// shutdown.
type Supervisor struct {
	cfg    config.Config
	logger *zap.Logger
}

// New builds a supervisor.
func New(cfg config.Config, logger *zap.Logger) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Supervisor{cfg: cfg, logger: logger}
}

// Run boots everything and blocks until the context is cancelled, then
// flushes the save and tears down. Startup failures (vote contract
// address, ROM acquisition, save directory, emulator init, RPC dial,
// relay setup) and a server bind failure are returned; once running,
// component errors are logged and do not end Run.
func (s *Supervisor) Run(ctx context.Context) error {
	cfg := s.cfg

	if !common.IsHexAddress(cfg.VoteContract) {
		return fmt.Errorf("invalid vote contract address: %q", cfg.VoteContract)
	}
	voteContract := common.HexToAddress(cfg.VoteContract)

	// Asset acquisition before anything touches the console.
	romPath := filepath.Join(cfg.SaveDir, romFileName)
	if err := emulator.EnsureROM(ctx, romPath, cfg.ROMURL, s.logger); err != nil {
		return fmt.Errorf("ensure rom: %w", err)
	}

	saves, err := emulator.NewSaveStore(cfg.SaveDir, s.logger)
	if err != nil {
		return err
	}

	// In production a previous instance may still be flushing its
	// save; give it a moment before loading.
	if cfg.Production && cfg.StartupBarrier > 0 {
		s.logger.Info("startup barrier", zap.Duration("wait", cfg.StartupBarrier))
		select {
		case <-time.After(cfg.StartupBarrier):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	core, err := emulator.NewCore(romPath)
	if err != nil {
		return fmt.Errorf("emulator init: %w", err)
	}
	saves.Restore(core)

	h := hub.New(frames.ScreenWidth, frames.ScreenHeight, cfg.MaxCachedVotes, cfg.MaxCachedActions, s.logger)

	pipeline := frames.NewPipeline(cfg.MaxEncodes, frames.JPEGEncoder(cfg.JPEGQuality), h.BroadcastFrame, s.logger)

	driver := emulator.NewDriver(core, saves, cfg.FPS, pipeline.Submit, s.logger)

	var journal storage.Journal = storage.NopJournal{}
	if cfg.JournalPath != "" {
		journal = storage.NewJsonlJournal(cfg.JournalPath)
	}

	aggregator := votes.New(cfg.WindowSize, s.onWindowComplete(h, driver, journal), s.logger)

	httpClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer httpClient.Close()

	ingest := chain.NewIngest(cfg.WindowSize, 30*time.Second, s.logger)
	subscriber := chain.NewSubscriber(cfg.WSURL, voteContract, ingest, s.logger)

	pollEvery := time.Duration(cfg.WindowSize*cfg.BlockTimeMs) * time.Millisecond
	poller := chain.NewPoller(httpClient, voteContract, pollEvery, ingest, s.logger)

	var relaySvc *relay.Relay
	if cfg.RelayEnabled {
		chainID, err := httpClient.GetChainID(ctx)
		if err != nil {
			return fmt.Errorf("get chain id: %w", err)
		}
		relaySvc, err = relay.New(
			httpClient,
			cfg.RelayKey,
			chainID,
			voteContract,
			common.HexToAddress(cfg.DelegationContract),
			s.logger,
		)
		if err != nil {
			return err
		}
		s.logger.Info("relay enabled", zap.String("relay_address", relaySvc.Address().Hex()))
	}

	app := server.New(server.Options{
		StaticDir: cfg.StaticDir,
		Hub:       h,
		Relay:     relaySvc,
	}, s.logger)

	bindErr := make(chan error, 1)
	go func() {
		bindErr <- app.Listen(fmt.Sprintf(":%d", cfg.Port))
	}()

	var wg sync.WaitGroup
	run := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
		}()
	}

	run(ingest.Run)
	run(subscriber.Run)
	run(poller.Run)
	run(driver.RunClock)
	run(func(ctx context.Context) { driver.RunSampler(ctx, cfg.GameStateEvery, h.BroadcastGameState) })
	run(func(ctx context.Context) { driver.RunAutosave(ctx, cfg.AutosaveEvery) })

	// Fan the ingested streams into the aggregator and the live echo.
	run(func(ctx context.Context) {
		for vote := range ingest.Votes() {
			h.BroadcastVote(vote)
			_ = aggregator.AddVote(vote)
		}
	})
	run(func(ctx context.Context) {
		for tick := range ingest.Ticks() {
			aggregator.OnBlock(tick.Number, tick.Hash)
		}
	})

	s.logger.Info("indexer running",
		zap.Int("port", cfg.Port),
		zap.Uint64("window_size", cfg.WindowSize),
		zap.String("vote_contract", voteContract.Hex()),
		zap.Bool("relay", cfg.RelayEnabled),
	)

	select {
	case err := <-bindErr:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	// Shutdown: flush save first, then close the edges.
	if err := driver.Save(); err != nil {
		s.logger.Error("final save failed", zap.Error(err))
	} else {
		s.logger.Info("final save flushed")
	}

	if err := app.Shutdown(); err != nil {
		s.logger.Warn("server shutdown", zap.Error(err))
	}

	wg.Wait()
	return nil
}

// onWindowComplete is the single consumer of finalized windows: journal
// it, show it to spectators, press the winning button.
func (s *Supervisor) onWindowComplete(h *hub.Hub, driver *emulator.Driver, journal storage.Journal) func(model.WindowResult) {
	return func(r model.WindowResult) {
		if err := journal.Append(r); err != nil {
			s.logger.Warn("journal append failed", zap.Error(err))
		}
		h.BroadcastResult(r)
		driver.PressButton(r.Winner, emulator.DefaultPressFrames)
	}
}
