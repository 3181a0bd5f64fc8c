package mail

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeSMTP accepts one plaintext session and returns what it received.
func fakeSMTP(t *testing.T) (host string, port int, received <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	out := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

		r := bufio.NewReader(conn)
		reply := func(s string) { _, _ = io.WriteString(conn, s+"\r\n") }

		var transcript strings.Builder
		reply("220 fake ESMTP")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				out <- transcript.String()
				return
			}
			transcript.WriteString(line)
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				reply("250 fake")
			case strings.HasPrefix(cmd, "DATA"):
				reply("354 go ahead")
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					transcript.WriteString(l)
					if l == ".\r\n" {
						break
					}
				}
				reply("250 queued")
			case strings.HasPrefix(cmd, "QUIT"):
				reply("221 bye")
				out <- transcript.String()
				return
			default:
				reply("250 ok")
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port, out
}

func TestSMTPMailerSendsCode(t *testing.T) {
	t.Parallel()

	host, port, received := fakeSMTP(t)
	m := NewSMTPMailer(Config{
		Host:     host,
		Port:     port,
		From:     "noreply@usermgmt.test",
		FromName: "User Management",
	})

	require.NoError(t, m.SendVerificationCode(context.Background(), "alice@x.com", "482913"))

	var transcript string
	select {
	case transcript = <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("fake smtp server received nothing")
	}

	require.Contains(t, transcript, "MAIL FROM:<noreply@usermgmt.test>")
	require.Contains(t, transcript, "RCPT TO:<alice@x.com>")
	require.Contains(t, transcript, "Subject: Email Verification Code")
	require.Contains(t, transcript, "From: User Management <noreply@usermgmt.test>")
	require.Contains(t, transcript, "Your verification code is: 482913")
}

func TestSMTPMailerDialFailure(t *testing.T) {
	t.Parallel()

	// Grab a free port and release it so nothing listens there
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	m := NewSMTPMailer(Config{Host: "127.0.0.1", Port: port, From: "a@x.com"})
	err = m.SendVerificationCode(context.Background(), "b@x.com", "123456")
	require.Error(t, err)
	require.Contains(t, err.Error(), "127.0.0.1:"+strconv.Itoa(port))
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	m := NewSMTPMailer(Config{Host: "smtp.example.com"})
	require.Equal(t, 587, m.cfg.Port)
	require.Equal(t, "Your verification code is: 000111", Body("000111"))
}

func TestLogMailer(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	m := LogMailer{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	require.NoError(t, m.SendVerificationCode(context.Background(), "dev@x.com", "999000"))
	require.Contains(t, buf.String(), "code=999000")
}
