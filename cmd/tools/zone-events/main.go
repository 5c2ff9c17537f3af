package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/annel0/zone-streamer/internal/eventbus"
)

const timeFormat = "2006-01-02T15:04:05Z"

func main() {
	var (
		serverURL  = flag.String("server", nats.DefaultURL, "NATS server URL")
		stream     = flag.String("stream", "ZONES", "JetStream stream name")
		command    = flag.String("cmd", "tail", "Command: tail, stats")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		zones      = flag.String("zones", "", "Zone IDs filter (comma-separated)")
		since      = flag.String("since", "1h", "Time duration since now (e.g., 1h, 30m)")
		limit      = flag.Int("limit", 100, "Maximum number of events")
		follow     = flag.Bool("follow", false, "Follow new events (like tail -f)")
	)
	flag.Parse()

	nc, err := nats.Connect(*serverURL, nats.Name("zone-events"))
	if err != nil {
		log.Fatalf("❌ Failed to connect to NATS: %v", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		log.Fatalf("❌ JetStream unavailable: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *command {
	case "tail":
		startTime, err := parseSinceTime(*since, time.Now())
		if err != nil {
			log.Fatalf("❌ Invalid since time: %v", err)
		}
		opts := &TailOptions{
			Filter: newFilter(parseStringList(*eventTypes), parseStringList(*zones)),
			Since:  startTime,
			Limit:  *limit,
			Follow: *follow,
		}
		if err := tailEvents(ctx, js, *stream, opts); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}

	case "stats":
		if err := showStats(js, *stream); err != nil {
			log.Fatalf("❌ Stats failed: %v", err)
		}

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, stats")
		os.Exit(1)
	}
}

type TailOptions struct {
	Filter eventFilter
	Since  time.Time
	Limit  int
	Follow bool
}

// tailEvents читает события стрима начиная с Since через эфемерного consumer'а
func tailEvents(ctx context.Context, js nats.JetStreamContext, stream string, opts *TailOptions) error {
	fmt.Printf("🎬 Tailing zone events since %s (limit: %d, follow: %v)\n",
		opts.Since.UTC().Format(timeFormat), opts.Limit, opts.Follow)

	sub, err := js.SubscribeSync(eventbus.SubjectPrefix+".*",
		nats.BindStream(stream),
		nats.StartTime(opts.Since),
		nats.AckNone(),
	)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	eventCount := 0
	for opts.Follow || eventCount < opts.Limit {
		waitCtx, cancel := context.WithTimeout(ctx, time.Second)
		msg, err := sub.NextMsgWithContext(waitCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if opts.Follow {
				continue
			}
			break // история прочитана
		}

		env, zev, err := decode(msg.Data)
		if err != nil {
			fmt.Printf("⚠️ skip malformed message on %s: %v\n", msg.Subject, err)
			continue
		}
		if !opts.Filter.match(zev) {
			continue
		}

		printEvent(env, zev)
		eventCount++
	}

	fmt.Printf("\n📊 Total events: %d\n", eventCount)
	return nil
}

// showStats выводит состояние стрима
func showStats(js nats.JetStreamContext, stream string) error {
	info, err := js.StreamInfo(stream)
	if err != nil {
		return fmt.Errorf("stream info: %w", err)
	}

	fmt.Println("📊 Stream statistics")
	fmt.Printf("Stream:    %s\n", info.Config.Name)
	fmt.Printf("Subjects:  %s\n", strings.Join(info.Config.Subjects, ", "))
	fmt.Printf("Messages:  %d\n", info.State.Msgs)
	fmt.Printf("Bytes:     %d\n", info.State.Bytes)
	fmt.Printf("Consumers: %d\n", info.State.Consumers)
	if info.State.Msgs > 0 {
		fmt.Printf("First:     %s\n", info.State.FirstTime.UTC().Format(timeFormat))
		fmt.Printf("Last:      %s\n", info.State.LastTime.UTC().Format(timeFormat))
	}
	return nil
}
