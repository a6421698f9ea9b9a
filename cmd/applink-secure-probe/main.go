// applink-secure-probe listens for AppLink datagrams and reports the outcome
// of every secure-service message it receives.
//
// Handshake records are logged with their length and TLS content type; error
// messages are logged with the peer-reported code. Traffic for other services
// is dropped.
//
// Usage:
//
//	applink-secure-probe [options]
//
// Options:
//
//	-listen     UDP listen address (default: ":12345")
//	-log-level  error, warn, info, debug or trace (default: info)
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/backkem/applink/pkg/protocol"
	"github.com/backkem/applink/pkg/router"
	"github.com/backkem/applink/pkg/secureservice"
	"github.com/backkem/applink/pkg/transport"
	"github.com/pion/logging"
)

// Options holds the probe's command-line options.
type Options struct {
	ListenAddr string
	LogLevel   logging.LogLevel
}

func parseFlags() Options {
	o := Options{
		ListenAddr: fmt.Sprintf(":%d", transport.DefaultPort),
		LogLevel:   logging.LogLevelInfo,
	}

	flag.StringVar(&o.ListenAddr, "listen", o.ListenAddr, "UDP listen address")
	flag.Func("log-level", "error, warn, info, debug or trace (default: info)", func(s string) error {
		level, err := parseLogLevel(s)
		if err != nil {
			return err
		}
		o.LogLevel = level
		return nil
	})
	flag.Parse()

	return o
}

func parseLogLevel(s string) (logging.LogLevel, error) {
	switch strings.ToLower(s) {
	case "disabled", "off":
		return logging.LogLevelDisabled, nil
	case "error":
		return logging.LogLevelError, nil
	case "warn", "warning":
		return logging.LogLevelWarn, nil
	case "info":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// handshakeLogger is the probe's secure-service callback.
type handshakeLogger struct {
	log logging.LeveledLogger
}

func (h *handshakeLogger) OnHandshakeData(data []byte) {
	// TLS and DTLS records start with a content type byte; 0x16 is handshake.
	contentType := "empty"
	if len(data) > 0 {
		contentType = fmt.Sprintf("0x%02X", data[0])
	}
	h.log.Infof("handshake data: %d bytes, record type %s", len(data), contentType)
}

func (h *handshakeLogger) OnHandshakeError(code secureservice.SecureError) {
	h.log.Warnf("handshake error from peer: %s", code)
}

func run(ctx context.Context, opts Options) error {
	loggerFactory := logging.NewDefaultLoggerFactory()
	loggerFactory.DefaultLogLevel = opts.LogLevel

	dispatcher := secureservice.NewDispatcher(secureservice.DispatcherConfig{
		Callback:      &handshakeLogger{log: loggerFactory.NewLogger("probe")},
		LoggerFactory: loggerFactory,
	})

	r := router.New(router.Config{LoggerFactory: loggerFactory})
	r.Register(protocol.ServiceTypeSecure, dispatcher)

	endpoint, err := transport.NewEndpoint(transport.EndpointConfig{
		ListenAddr:    opts.ListenAddr,
		OnFrame:       r.HandleFrame,
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.ListenAddr, err)
	}

	if err := endpoint.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	return endpoint.Close()
}

func main() {
	opts := parseFlags()

	if _, err := net.ResolveUDPAddr("udp", opts.ListenAddr); err != nil {
		log.Fatalf("Invalid listen address: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Fatalf("Probe error: %v", err)
	}
}
