package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llehouerou/duet/internal/errmsg"
	"github.com/llehouerou/duet/internal/media"
	"github.com/llehouerou/duet/internal/mpris"
	"github.com/llehouerou/duet/internal/notify"
	"github.com/llehouerou/duet/internal/playback"
	"github.com/llehouerou/duet/internal/player"
	"github.com/llehouerou/duet/internal/playlist"
	"github.com/llehouerou/duet/internal/resolve"
	"github.com/llehouerou/duet/internal/sched"
	"github.com/llehouerou/duet/internal/state"
	"github.com/llehouerou/duet/internal/stderr"
)

const loadTimeout = 5 * time.Second

func init() {
	rootCmd.AddCommand(playCmd)
	addPlayFlags(playCmd)
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("shuffle", false, "Pick upcoming tracks at random")
	cmd.Flags().String("repeat", "", "Repeat mode: off, all or one")
	cmd.Flags().Float64("fade", 0, "Crossfade duration in seconds")
	cmd.Flags().Int("volume", 0, "Volume, 0-100")
	cmd.Flags().Bool("no-state", false, "Neither restore nor save the session")
	lo.Must0(cmd.RegisterFlagCompletionFunc("repeat", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"off", "all", "one"}, cobra.ShellCompDirectiveNoFileComp
	}))
}

var playCmd = &cobra.Command{
	Use:   "play [file|dir|url]...",
	Short: "Play files, directories or URLs, or resume the saved session",
	Long: "Play the given tracks in order with crossfades between them.\n" +
		"Without arguments, the queue saved by the last session is resumed.",
	RunE: runPlay,
}

// playFlags are the command-line overrides of the saved settings.
type playFlags struct {
	shuffle *bool
	repeat  *media.RepeatMode
	fade    time.Duration
	volume  *int
	noState bool
}

func readPlayFlags(cmd *cobra.Command) (playFlags, error) {
	f := cmd.Flags()
	var pf playFlags
	if f.Changed("shuffle") {
		pf.shuffle = lo.ToPtr(lo.Must(f.GetBool("shuffle")))
	}
	if f.Changed("repeat") {
		mode, err := media.ParseRepeatMode(lo.Must(f.GetString("repeat")))
		if err != nil {
			return pf, err
		}
		pf.repeat = &mode
	}
	if fade := lo.Must(f.GetFloat64("fade")); fade > 0 {
		pf.fade = time.Duration(fade * float64(time.Second))
	}
	if f.Changed("volume") {
		pf.volume = lo.ToPtr(min(max(lo.Must(f.GetInt("volume")), 0), 100))
	}
	pf.noState = lo.Must(f.GetBool("no-state"))
	return pf, nil
}

func (pf playFlags) apply(s *state.Settings) {
	if pf.shuffle != nil {
		s.Shuffle = *pf.shuffle
	}
	if pf.repeat != nil {
		s.Repeat = *pf.repeat
	}
	if pf.volume != nil {
		s.Volume = *pf.volume
	}
}

func runPlay(cmd *cobra.Command, args []string) error {
	pf, err := readPlayFlags(cmd)
	if err != nil {
		return err
	}

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	log := e.log

	// Decoder libraries write to stderr; keep it off the status line.
	if e.cfg.Log.File != "" {
		capture, err := stderr.Start(log)
		if err != nil {
			log.WithError(err).Warn("stderr capture")
		} else {
			defer capture.Stop()
		}
	}

	tracks, err := playlist.Collect(args...)
	if err != nil {
		return opError(errmsg.OpCollectArgs, err)
	}
	if len(args) > 0 && len(tracks) == 0 {
		return userError("no playable tracks in " + fmt.Sprint(args))
	}

	pb := e.cfg.GetPlayback()
	settings := state.Settings{Volume: pb.Volume}
	var session state.Session
	var store *state.Manager
	if !e.cfg.State.Disabled && !pf.noState {
		store, err = state.Open(e.cfg.State.Path)
		if err != nil {
			return opError(errmsg.OpStateOpen, err)
		}
		defer store.Close()
		settings, session = loadSession(cmd.Context(), store, settings, log)
	}
	pf.apply(&settings)
	if pf.fade > 0 {
		pb.FadeDuration = pf.fade
	}

	loop := sched.NewLoop()
	defer loop.Close()

	var transports [2]player.Interface
	for i := range transports {
		transports[i] = player.New(player.Options{
			AccessToken: e.cfg.AccessToken,
			Log:         log.WithField("unit", i+1),
		})
	}

	engine := playback.New(transports, resolve.Base{Base: e.cfg.BaseURL}, loop, playback.Options{
		FadeDuration:   pb.FadeDuration,
		PrefetchLeeway: pb.PrefetchLeeway,
		ResolveTimeout: pb.ResolveTimeout,
		Volume:         settings.Volume,
		Muted:          settings.Muted,
		Repeat:         settings.Repeat,
		Shuffle:        settings.Shuffle,
		BacklogLimit:   pb.BacklogLimit,
		ManualAdvance:  !pb.AutoAdvance,
		Log:            log,
	})
	defer engine.Close()
	if settings.Volume == 0 {
		_ = engine.SetVolume(0)
	}

	if store != nil {
		persister := state.NewPersister(store, engine.Bus(), settings, session, log)
		defer persister.Close()
	}

	if e.cfg.Notify.Enabled {
		if n, err := notify.New(); err != nil {
			log.WithError(err).Warn("desktop notifications unavailable")
		} else {
			announcer := notify.NewAnnouncer(n, engine.Bus(), log)
			defer announcer.Close()
		}
	}

	sub := engine.Subscribe()
	if err := start(engine, tracks, session); err != nil {
		return err
	}

	if e.cfg.MPRISEnabled() {
		adapter, err := mpris.New(engine, log)
		if err != nil {
			log.WithError(err).Warn(errmsg.Format(errmsg.OpMPRISStart, err))
		} else {
			defer adapter.Close()
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	watch(ctx, engine, sub, cmd.OutOrStdout(), terminalWidth())
	return nil
}

// loadSession reads the saved settings and queue. Read failures are
// logged and the defaults kept.
func loadSession(ctx context.Context, store state.Interface, defaults state.Settings, log logrus.FieldLogger) (state.Settings, state.Session) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	settings := defaults
	if s, err := store.LoadSettings(ctx); err != nil {
		log.WithError(err).Warn(errmsg.Format(errmsg.OpSettingsLoad, err))
	} else if s != nil {
		settings = *s
	}

	var session state.Session
	if s, err := store.LoadQueue(ctx); err != nil {
		log.WithError(err).Warn(errmsg.Format(errmsg.OpQueueLoad, err))
	} else {
		session = *s
	}
	return settings, session
}

// start plays the tracks given on the command line, or resumes session.
func start(svc playback.Service, tracks []media.Track, session state.Session) error {
	switch {
	case len(tracks) > 0:
		if err := svc.PlayTrack(tracks[0], tracks); err != nil {
			return opError(errmsg.OpTrackPlay, err)
		}
	case !session.Empty():
		if err := svc.Restore(session.Current, session.Queue, session.Backlog); err != nil {
			return opError(errmsg.OpQueueRestore, err)
		}
		play := svc.Play
		if session.Current == nil {
			play = svc.Next
		}
		if err := play(); err != nil {
			return opError(errmsg.OpPlaybackStart, err)
		}
	default:
		return userError("nothing to play: pass files, directories or URLs")
	}
	return nil
}

// watch redraws the status line until ctx ends, the engine closes, or the
// queue runs out.
func watch(ctx context.Context, engine *playback.Engine, sub *playback.Subscription, out io.Writer, width int) {
	np := nowPlaying{
		track:   engine.CurrentSong(),
		state:   engine.State(),
		repeat:  engine.Repeat(),
		shuffle: engine.Shuffle(),
		volume:  engine.Volume(),
		muted:   engine.Muted(),
	}
	draw := func() {
		_, _ = fmt.Fprint(out, "\r\x1b[K"+np.render(width))
	}
	draw()
	defer fmt.Fprintln(out)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case tc := <-sub.TrackChanged:
			if tc.Current == nil && tc.Previous != nil {
				np.track = nil
				draw()
				return
			}
			np.track = tc.Current
			np.time = media.TimeState{}
		case sc := <-sub.StateChanged:
			np.state = sc.Current
		case pc := <-sub.PositionChanged:
			if pc.Unit != engine.CurrentUnit() {
				continue
			}
			np.time = pc.Time
			np.phase = engine.Phase()
		case mc := <-sub.ModeChanged:
			np.repeat, np.shuffle = mc.Repeat, mc.Shuffle
		case vc := <-sub.VolumeChanged:
			np.volume, np.muted = vc.Volume, vc.Muted
		case <-sub.QueueChanged:
			continue
		case ee := <-sub.Error:
			_, _ = fmt.Fprintln(out, "\r\x1b[K"+failStyle.Render("✗")+" "+errmsg.FormatWith(errOp(ee), ee.TrackID, ee.Err))
		}
		draw()
	}
}

func errOp(ee playback.ErrorEvent) errmsg.Op {
	if ee.Operation == playback.OpResolve {
		return errmsg.OpTrackResolve
	}
	return errmsg.OpPlaybackStart
}

func terminalWidth() int {
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 20 {
		return n
	}
	return 80
}
