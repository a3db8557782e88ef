package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/fitd-tech/moodring-vibe/activity"
	"github.com/fitd-tech/moodring-vibe/backend"
	"github.com/fitd-tech/moodring-vibe/internal/config"
	"github.com/fitd-tech/moodring-vibe/internal/logging"
	"github.com/fitd-tech/moodring-vibe/session"
	"github.com/fitd-tech/moodring-vibe/spotify"
	"github.com/fitd-tech/moodring-vibe/tagging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("moodring-poll failed")
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	opts, err := parseFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	c, err := config.Load(opts.envFile)
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	logger := logging.Setup(c)
	displayAppname(c.GetAppName())

	store, closeStore, err := openStore(c)
	if err != nil {
		return err
	}
	defer closeStore()

	manager := session.NewManager(
		backend.New(c.GetBackendURL(), c.GetBackendTimeout()),
		store,
		session.WithLogger(logger),
		session.WithRefreshTimeout(c.GetRefreshTimeout()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.logout {
		manager.Logout(ctx)
		return nil
	}

	poller := activity.NewPoller(manager,
		spotify.New(c.GetSpotifyAPIURL(),
			spotify.WithHTTPClient(newHTTPClient(c.GetSpotifyTimeout())),
			spotify.WithLogger(logger),
		),
		activity.WithInterval(c.GetPollInterval()),
		activity.WithRecentLimit(c.GetRecentTracksLimit()),
		activity.WithLogger(logger),
	)
	defer poller.Close()

	var tags *tagging.Client
	if opts.tags {
		tags = tagging.New(c.GetBackendURL(), c.GetBackendTimeout())
	}
	published := make(chan struct{}, 1)
	poller.Subscribe(func(s activity.Snapshot) {
		logSnapshot(ctx, logger, tags, s)
		select {
		case published <- struct{}{}:
		default:
		}
	})
	defer poller.Follow(manager)()

	if err := signIn(ctx, manager, opts); err != nil {
		return err
	}

	if opts.once {
		return waitForFirstSnapshot(ctx, published, c.GetPollInterval())
	}
	<-ctx.Done()
	logger.Info().Msg("Stopping")
	return nil
}

// signIn exchanges the authorization code when one is given and otherwise
// restores the persisted session. Either way the poller starts from the
// resulting session event.
func signIn(ctx context.Context, manager *session.Manager, opts options) error {
	if opts.code != "" {
		s, err := manager.Login(ctx, opts.code, opts.verifier)
		if err != nil {
			var failure *backend.AuthFailure
			if errors.As(err, &failure) {
				log.Error().Str("stage", string(failure.Stage)).Str("body", failure.Body).Msg("Backend rejected login")
			}
			return fmt.Errorf("login: %w", err)
		}
		log.Info().Int64("user_id", s.User.ID).Str("spotify_id", s.User.SpotifyID).Msg("Session adopted")
		return nil
	}

	s := manager.Restore(ctx)
	if s == nil {
		return errors.New("no stored session: pass --code and --verifier to log in")
	}
	log.Info().Int64("user_id", s.User.ID).Bool("expired", manager.IsExpired(s)).Msg("Session restored")
	return nil
}

func waitForFirstSnapshot(ctx context.Context, published <-chan struct{}, timeout time.Duration) error {
	select {
	case <-published:
		return nil
	case <-ctx.Done():
		return nil
	case <-time.After(timeout):
		return errors.New("no activity published before the poll interval elapsed")
	}
}

func logSnapshot(ctx context.Context, logger zerolog.Logger, tags *tagging.Client, s activity.Snapshot) {
	event := logger.Info().Int64("user_id", s.UserID).Int("recent_tracks", len(s.RecentTracks))
	if cp := s.CurrentlyPlaying; cp != nil {
		event = event.Str("song", cp.Name).Str("artist", cp.Artist).Str("album", cp.Album).Str("song_id", cp.SongID())
	}
	event.Msg("Activity updated")

	if tags == nil || s.CurrentlyPlaying == nil {
		return
	}
	songTags, err := tags.SongTags(ctx, s.CurrentlyPlaying.SongID(), s.UserID)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load song tags")
		return
	}
	names := make([]string, 0, len(songTags))
	for _, t := range songTags {
		names = append(names, t.Name)
	}
	logger.Info().Strs("tags", names).Str("song_id", s.CurrentlyPlaying.SongID()).Msg("Song tags")
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
