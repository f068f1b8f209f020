// SPDX-License-Identifier: GPL-3.0-or-later
package log

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

type PacketType int

const (
	PacketClient PacketType = iota
	PacketServer
	PacketDevInf
	PacketData
)

const firstPacketNum = 10

// PacketLogger dumps every SyncML message to a debug directory. Client and
// server message of one roundtrip share a packet number which is kept in
// packetnum.txt; a closed session advances it to the next multiple of ten.
type PacketLogger struct {
	dir string
	mu  sync.Mutex
}

func NewPacketLogger(dir string) (*PacketLogger, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("could not stat debug dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("debug dir %s is not a directory", dir)
	}

	return &PacketLogger{dir: dir}, nil
}

func (p *PacketLogger) Log(t PacketType, content []byte, wbxml bool, sessionClose bool) error {
	if p == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	packetNum, err := p.packetNum()
	if err != nil {
		return err
	}

	var filename string
	switch t {
	case PacketClient, PacketServer:
		prefix := "client_"
		if t == PacketServer {
			prefix = "server_"
		}
		ext := ".xml"
		if wbxml {
			ext = ".wbxml"
		}
		filename = prefix + strconv.Itoa(packetNum) + ext
	case PacketDevInf:
		filename = "devinf.txt"
	case PacketData:
		filename = "data.txt"
	default:
		return fmt.Errorf("unknown packet type %d", t)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if t == PacketData {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(filepath.Join(p.dir, filename), flags, 0600)
	if err != nil {
		return fmt.Errorf("could not open packet file: %w", err)
	}
	_, err = f.Write(content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("could not write packet file: %w", err)
	}

	if t != PacketServer {
		return nil
	}

	if sessionClose {
		packetNum = packetNum - packetNum%10 + 10
	} else {
		packetNum++
	}

	return p.savePacketNum(packetNum)
}

func (p *PacketLogger) packetNum() (int, error) {
	raw, err := ioutil.ReadFile(filepath.Join(p.dir, "packetnum.txt"))
	if os.IsNotExist(err) {
		return firstPacketNum, nil
	}
	if err != nil {
		return 0, fmt.Errorf("could not read packet number: %w", err)
	}

	num, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || num <= 0 {
		return firstPacketNum, nil
	}

	return num, nil
}

func (p *PacketLogger) savePacketNum(num int) error {
	err := ioutil.WriteFile(filepath.Join(p.dir, "packetnum.txt"), []byte(strconv.Itoa(num)), 0600)
	if err != nil {
		return fmt.Errorf("could not write packet number: %w", err)
	}

	return nil
}
