package enforce

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

// Runner executes a single command on the firewall's management channel and
// returns its stdout. The only abstraction tests need to fake.
type Runner interface {
	Run(ctx context.Context, command, stdin string) (string, error)
}

// SSHRunner runs commands on the router over SSH with key auth. A fresh
// connection is dialed per command so a half-dead session never wedges a
// later push.
type SSHRunner struct {
	addr    string
	user    string
	signer  ssh.Signer
	timeout time.Duration
	hostKey ssh.HostKeyCallback
}

func NewSSHRunner(host string, port int, user, keyPath string, timeout time.Duration) (*SSHRunner, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read ssh key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse ssh key: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SSHRunner{
		addr:    fmt.Sprintf("%s:%d", host, port),
		user:    user,
		signer:  signer,
		timeout: timeout,
		// The router lives on the LAN and is provisioned out of band.
		hostKey: ssh.InsecureIgnoreHostKey(),
	}, nil
}

func (r *SSHRunner) Run(ctx context.Context, command, stdin string) (string, error) {
	d := net.Dialer{Timeout: r.timeout}
	conn, err := d.DialContext(ctx, "tcp", r.addr)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", r.addr, err)
	}
	cc, chans, reqs, err := ssh.NewClientConn(conn, r.addr, &ssh.ClientConfig{
		User:            r.user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(r.signer)},
		HostKeyCallback: r.hostKey,
		Timeout:         r.timeout,
	})
	if err != nil {
		conn.Close()
		return "", fmt.Errorf("ssh handshake: %w", err)
	}
	client := ssh.NewClient(cc, chans, reqs)
	defer client.Close()

	sess, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("ssh session: %w", err)
	}
	defer sess.Close()

	var out bytes.Buffer
	sess.Stdin = strings.NewReader(stdin)
	sess.Stdout = &out

	done := make(chan error, 1)
	go func() { done <- sess.Run(command) }()
	select {
	case <-ctx.Done():
		client.Close()
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			return out.String(), fmt.Errorf("remote command %q: %w", command, err)
		}
		return out.String(), nil
	}
}
