package cli

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/noxus/internal/logging"
)

const linkReadTimeout = 5 * time.Second

// ListenLinks accepts connections on addr and delivers every non-empty
// line received as a deep link. The channel is closed once ctx is done and
// all connections have been served.
func ListenLinks(ctx context.Context, addr string, l logging.Logger) (<-chan string, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return serveLinks(ctx, ln, l), nil
}

func serveLinks(ctx context.Context, ln net.Listener, l logging.Logger) <-chan string {
	out := make(chan string, 8)

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	go func() {
		var wg sync.WaitGroup
		defer func() {
			wg.Wait()
			close(out)
		}()

		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() == nil {
					l.Warn(ctx, "deep link listener stopped", "error", err)
				}
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				serveLinkConn(ctx, conn, out)
			}()
		}
	}()

	return out
}

func serveLinkConn(ctx context.Context, conn net.Conn, out chan<- string) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(linkReadTimeout))

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		select {
		case out <- line:
		case <-ctx.Done():
			return
		}
	}
}

// ForwardLink hands raw to the client listening on addr.
func ForwardLink(ctx context.Context, addr, raw string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("no running client at %s: %w", addr, err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintln(conn, raw); err != nil {
		return fmt.Errorf("forward link: %w", err)
	}
	return nil
}
