package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"watch-party/bus"
	"watch-party/contract"
	"watch-party/moderation"
	"watch-party/repositories"
	"watch-party/runtime/workers"
	"watch-party/services"
	"watch-party/storage"
	"watch-party/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, drives the interactive loop, and
// centralizes error reporting so that every defer executes before the
// process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Shared store (BadgerDB). Badger's own logging stays quiet so it
	// does not interleave with the chat output.
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	store := storage.New(db, log)
	rooms := repositories.NewRoomRepository(store, log)
	if err := rooms.GarbageCollect(); err != nil {
		log.Warn("Startup garbage collection failed", "error", err)
	}

	// 3. Chat history index, in memory only: history is rebuilt from live
	// traffic and the index never outlives the process.
	indexWriter, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return fmt.Errorf("open message index: %w", err)
	}
	defer func() {
		_ = indexWriter.Close()
	}()
	index := repositories.NewMessageIndex(indexWriter, log, config.SearchLimit)

	moderator, err := moderation.NewEmbeddedModerator()
	if err != nil {
		return fmt.Errorf("build moderator: %w", err)
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Services
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	sessions := services.NewSessionRef()
	renderer := ui.NewConsoleRenderer(os.Stdout)
	player := ui.NewConsolePlayer(os.Stdout)
	eventBus := bus.New(store, log, config.EventExpiry)

	membership := services.NewMembershipService(log, rooms, eventBus, player, renderer, sessions)
	playback := services.NewPlaybackService(log, rooms, eventBus, player, sessions, supervisor,
		config.SyncInterval, config.DriftThreshold)
	chat := services.NewChatService(log, rooms, eventBus, renderer, sessions, moderator, index)
	services.NewRouter(membership, playback, chat)

	player.SetHandlers(playback.HandlePlayerReady, playback.HandlePlayerStateChange)

	// 6. Interactive loop. Stdin reads block, so they run in their own
	// goroutine and the main loop multiplexes lines with the signal context.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Println("Watch party ready. Type /help for commands.")
	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down gracefully...")
			_ = membership.LeaveRoom()
			supervisor.Stop()
			log.Info("Program stopped cleanly")
			return nil
		case line, ok := <-lines:
			if !ok {
				_ = membership.LeaveRoom()
				supervisor.Stop()
				return nil
			}
			if quit := dispatch(ctx, line, membership, playback, chat, player, renderer); quit {
				_ = membership.LeaveRoom()
				supervisor.Stop()
				log.Info("Program stopped cleanly")
				return nil
			}
		}
	}
}

// dispatch interprets one input line. Lines starting with a slash are
// commands; everything else is chat. Returns true when the user asked to
// quit.
func dispatch(
	ctx context.Context,
	line string,
	membership *services.MembershipService,
	playback *services.PlaybackService,
	chat *services.ChatService,
	player *ui.ConsolePlayer,
	renderer contract.Renderer,
) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if !strings.HasPrefix(line, "/") {
		if err := chat.Send(line); err != nil {
			renderer.RenderError(err.Error(), contract.ErrorAutoHide)
		}
		return false
	}

	fields := strings.Fields(line)
	command, args := fields[0], fields[1:]

	var err error
	switch command {
	case "/create":
		_, err = membership.CreateRoom(ctx, strings.Join(args, " "))
	case "/join":
		if len(args) < 2 {
			err = fmt.Errorf("usage: /join <code> <nickname>")
			break
		}
		_, err = membership.JoinRoom(ctx, strings.Join(args[1:], " "), args[0])
	case "/leave":
		err = membership.LeaveRoom()
	case "/load":
		if len(args) != 1 {
			err = fmt.Errorf("usage: /load <youtube-url>")
			break
		}
		err = playback.LoadVideo(args[0])
	case "/play":
		player.Play()
	case "/pause":
		player.Pause()
	case "/seek":
		var seconds float64
		if len(args) != 1 {
			err = fmt.Errorf("usage: /seek <seconds>")
			break
		}
		if seconds, err = strconv.ParseFloat(args[0], 64); err != nil {
			err = fmt.Errorf("usage: /seek <seconds>")
			break
		}
		player.SeekTo(seconds)
	case "/search":
		if len(args) == 0 {
			err = fmt.Errorf("usage: /search <terms>")
			break
		}
		err = runSearch(ctx, chat, strings.Join(args, " "))
	case "/help":
		printHelp()
	case "/quit", "/exit":
		return true
	default:
		err = fmt.Errorf("unknown command %s, type /help", command)
	}

	if err != nil {
		renderer.RenderError(err.Error(), contract.ErrorAutoHide)
	}
	return false
}

func runSearch(ctx context.Context, chat *services.ChatService, terms string) error {
	hits, total, err := chat.Search(ctx, terms)
	if err != nil {
		return err
	}
	fmt.Printf("%d matching message(s)\n", total)
	for _, hit := range hits {
		fmt.Printf("  %s: %s\n", hit.Sender, hit.Content)
	}
	return nil
}

func printHelp() {
	fmt.Print(`Commands:
  /create <nickname>        create a room and become its host
  /join <code> <nickname>   join an existing room
  /leave                    leave the current room
  /load <youtube-url>       cue a video (host only)
  /play                     resume playback
  /pause                    pause playback
  /seek <seconds>           jump to a position
  /search <terms>           search the chat history of this room
  /quit                     leave and exit
Anything else is sent as a chat message.
`)
}
