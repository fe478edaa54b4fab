package mail

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
)

// smtpSession is what the test SMTP server saw during one connection.
type smtpSession struct {
	MailFrom string
	RcptTo   []string
	Data     string
}

// startTestSMTPServer starts a minimal SMTP server on a random port that
// accepts one message and then returns. It only implements the commands the
// gomail dialer issues against an unauthenticated, non-TLS server. The
// returned function stops the server and reports the recorded session.
func startTestSMTPServer(t *testing.T) (host string, port int, stop func() smtpSession) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		session smtpSession
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer ln.Close()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		fmt.Fprintf(conn, "220 localhost Test SMTP Service Ready\r\n")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "EHLO") || strings.HasPrefix(line, "HELO"):
				fmt.Fprintf(conn, "250-localhost Hello\r\n250 OK\r\n")
			case strings.HasPrefix(line, "MAIL FROM:"):
				mu.Lock()
				session.MailFrom = strings.Trim(strings.TrimPrefix(line, "MAIL FROM:"), "<> ")
				mu.Unlock()
				fmt.Fprintf(conn, "250 OK\r\n")
			case strings.HasPrefix(line, "RCPT TO:"):
				mu.Lock()
				session.RcptTo = append(session.RcptTo, strings.Trim(strings.TrimPrefix(line, "RCPT TO:"), "<> "))
				mu.Unlock()
				fmt.Fprintf(conn, "250 OK\r\n")
			case strings.HasPrefix(line, "DATA"):
				fmt.Fprintf(conn, "354 End data with <CR><LF>.<CR><LF>\r\n")
				var data strings.Builder
				for {
					dline, derr := r.ReadString('\n')
					if derr != nil {
						return
					}
					if strings.TrimSpace(dline) == "." {
						break
					}
					data.WriteString(dline)
				}
				mu.Lock()
				session.Data = data.String()
				mu.Unlock()
				fmt.Fprintf(conn, "250 OK: queued as 12345\r\n")
			case strings.HasPrefix(line, "QUIT"):
				fmt.Fprintf(conn, "221 Bye\r\n")
				return
			default:
				fmt.Fprintf(conn, "250 OK\r\n")
			}
		}
	}()

	host = "127.0.0.1"
	addr := ln.Addr().String()
	var p int
	if _, err := fmt.Sscanf(addr, "127.0.0.1:%d", &p); err != nil {
		ln.Close()
		t.Fatalf("failed to parse listen addr: %v", err)
	}

	stop = func() smtpSession {
		ln.Close()
		wg.Wait()
		mu.Lock()
		defer mu.Unlock()
		return session
	}
	return host, p, stop
}
