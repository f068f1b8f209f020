// SPDX-License-Identifier: GPL-3.0-or-later
package replay

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/CrawX/go-syncml/log"
	"github.com/CrawX/go-syncml/syncml"

	"github.com/sirupsen/logrus"
)

// Sender delivers a client message to a server and returns the answer.
type Sender interface {
	Send(ctx context.Context, body []byte) ([]byte, error)
}

type Processor interface {
	Process(ctx context.Context, body []byte, contentType, respURI string) (*syncml.Response, error)
}

// EngineSender answers messages in process.
type EngineSender struct {
	Engine  Processor
	RespURI string
}

func (s *EngineSender) Send(ctx context.Context, body []byte) ([]byte, error) {
	resp, err := s.Engine.Process(ctx, body, syncml.MimeSyncMLXML, s.RespURI)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// HTTPSender posts messages to a running server.
type HTTPSender struct {
	URL    string
	Client *http.Client
}

func (s *HTTPSender) Send(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", syncml.MimeSyncMLXML)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not post message: %w", err)
	}
	defer resp.Body.Close()

	answer, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read answer: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server answered %s: %s", resp.Status, strings.TrimSpace(string(answer)))
	}

	return answer, nil
}

// Seeder creates an entry on the server side, as if it was added by another
// client before the session.
type Seeder interface {
	Seed(ctx context.Context, contentType, content string) error
}

// Difference is a recorded server packet not matching the answer.
type Difference struct {
	Packet   int
	Position int
	Expected string
	Got      string
}

func (d *Difference) Error() string {
	return fmt.Sprintf("packet %d differs at position %d: %q vs. %q", d.Packet, d.Position, excerpt(d.Expected, d.Position), excerpt(d.Got, d.Position))
}

func excerpt(s string, pos int) string {
	if pos >= len(s) {
		return ""
	}
	end := pos + 10
	if end > len(s) {
		end = len(s)
	}
	return s[pos:end]
}

// Replayer runs recorded test cases. A test case directory holds the
// client_<n>.xml and server_<n>.xml packets written by the packet logger;
// every session starts at a multiple of ten.
type Replayer struct {
	sender Sender
	seeder Seeder
	sleep  func(time.Duration)

	l *logrus.Logger
}

func NewReplayer(sender Sender, seeder Seeder) *Replayer {
	return &Replayer{
		sender: sender,
		seeder: seeder,
		sleep:  time.Sleep,
		l:      log.Logger(log.LOG_MAIN),
	}
}

func packetFile(dir, side string, n int) string {
	return filepath.Join(dir, side+"_"+strconv.Itoa(n)+".xml")
}

func readPacket(dir, side string, n int) (string, bool, error) {
	raw, err := ioutil.ReadFile(packetFile(dir, side, n))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("could not read packet: %w", err)
	}
	return string(raw), true, nil
}

// Run replays every session of a test case and returns the number of
// packets compared. A mismatch is returned as *Difference.
func (r *Replayer) Run(ctx context.Context, dir string) (int, error) {
	packets := 0
	anchor := ""
	for session := 10; ; session += 10 {
		n, err := r.session(ctx, dir, session, &anchor)
		if err != nil {
			return packets, err
		}
		if n == 0 {
			break
		}
		packets += n
	}

	if packets == 0 {
		return 0, fmt.Errorf("no packets found in %s", dir)
	}

	r.l.WithFields(logrus.Fields{"dir": dir, "packets": packets}).Info("Test case passed")
	return packets, nil
}

func (r *Replayer) session(ctx context.Context, dir string, start int, anchor *string) (int, error) {
	if r.seeder != nil {
		seeded := 0
		for n := start; ; n++ {
			ref, ok, err := readPacket(dir, "server", n)
			if err != nil {
				return 0, err
			}
			if !ok {
				break
			}
			count, err := r.seed(ctx, ref)
			if err != nil {
				return 0, err
			}
			seeded += count
		}

		// Server anchors have a resolution of one second, entries seeded
		// in the second the session starts would fall out of its window.
		if seeded > 0 {
			r.sleep(time.Until(time.Now().Truncate(time.Second).Add(time.Second)))
		}
	}

	uids := []string{}
	refUids := []string{}
	n := start
	for ; ; n++ {
		ref, ok, err := readPacket(dir, "server", n)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		client, ok, err := readPacket(dir, "client", n)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("client packet %d missing", n)
		}

		client = replaceAll(client, refUids, uids)
		r.l.WithField("packet", n).Debug("Replaying packet")
		answer, err := r.sender.Send(ctx, []byte(client))
		if err != nil {
			return 0, fmt.Errorf("packet %d: %w", n, err)
		}
		got := string(answer)

		if n == start {
			*anchor = convertAnchors(&ref, got, *anchor)
		}

		got = sortChanges(got)
		ref = sortChanges(ref)
		uids = append(uids, serverUids(got)...)
		refUids = append(refUids, serverUids(ref)...)
		ref = replaceAll(ref, refUids, uids)

		err = compare(n, ref, got)
		if err != nil {
			return 0, err
		}
	}

	return n - start, nil
}

var (
	seedCommand = regexp.MustCompile(`(?is)<Add>.*?<Type[^>]*>(.*?)</Type>.*?<Data[^>]*>(.*?)</Data>.*?</Add>`)
	cdata       = strings.NewReplacer("<![CDATA[", "", "]]>", "")
)

// seed creates the entries a recorded server packet sends to the client.
func (r *Replayer) seed(ctx context.Context, ref string) (int, error) {
	matches := seedCommand.FindAllStringSubmatch(cdata.Replace(ref), -1)
	for _, m := range matches {
		err := r.seeder.Seed(ctx, strings.TrimSpace(m[1]), m[2])
		if err != nil {
			return 0, fmt.Errorf("could not seed %s entry: %w", m[1], err)
		}
	}
	return len(matches), nil
}

func replaceAll(s string, from, to []string) string {
	pairs := []string{}
	for i := range from {
		if i >= len(to) || from[i] == to[i] || from[i] == "" {
			continue
		}
		pairs = append(pairs, from[i], to[i])
	}
	if len(pairs) == 0 {
		return s
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

var (
	lastAnchor = regexp.MustCompile(`(?i)<Last>(\d+)</Last>`)
	nextAnchor = regexp.MustCompile(`(?i)<Next>(\d+)</Next>`)
)

func lastMatch(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindAllStringSubmatch(s, -1)
	if len(m) == 0 {
		return "", false
	}
	return m[len(m)-1][1], true
}

// convertAnchors puts the server anchors of this run into a recorded packet
// and returns the next anchor for the following session.
func convertAnchors(ref *string, got, anchor string) string {
	if anchor != "" {
		if last, ok := lastMatch(lastAnchor, *ref); ok {
			*ref = strings.Replace(*ref, "<Last>"+last+"</Last>", "<Last>"+anchor+"</Last>", -1)
		}
	}

	next, ok := lastMatch(nextAnchor, got)
	if !ok {
		return ""
	}
	if recorded, ok := lastMatch(nextAnchor, *ref); ok {
		*ref = strings.Replace(*ref, "<Next>"+recorded+"</Next>", "<Next>"+next+"</Next>", -1)
	}
	return next
}

var (
	changeCommand = regexp.MustCompile(`(?is)<(?:Add|Replace|Delete)>.*?</(?:Add|Replace|Delete)>`)
	dataElement   = regexp.MustCompile(`(?is)<Data>.*?</Data>`)
	locURI        = regexp.MustCompile(`(?is)<LocURI>[^<]*</LocURI>`)
	sourceURI     = regexp.MustCompile(`(?is)<Source>\s*<LocURI>([^<]*)</LocURI>`)
	cmdID         = regexp.MustCompile(`<CmdID>[^<]*</CmdID>`)
)

func sortKey(command string) string {
	if data := dataElement.FindString(command); data != "" {
		return data
	}
	return locURI.ReplaceAllString(command, "")
}

// sortChanges orders the server changes of a packet by content. The order a
// backend reports changes in is arbitrary; command ids change with it.
func sortChanges(content string) string {
	idx := changeCommand.FindAllStringIndex(content, -1)
	if len(idx) == 0 {
		return content
	}

	commands := make([]string, 0, len(idx))
	size := 0
	for _, i := range idx {
		commands = append(commands, content[i[0]:i[1]])
		size += i[1] - i[0]
	}
	if size != idx[len(idx)-1][1]-idx[0][0] {
		// Changes are interleaved with other commands.
		return content
	}

	sort.SliceStable(commands, func(i, j int) bool {
		return sortKey(commands[i]) < sortKey(commands[j])
	})

	sorted := content[:idx[0][0]] + strings.Join(commands, "") + content[idx[len(idx)-1][1]:]
	return cmdID.ReplaceAllString(sorted, "<CmdID>IGNORED</CmdID>")
}

// serverUids lists the server ids sent with changes.
func serverUids(content string) []string {
	uids := []string{}
	for _, command := range changeCommand.FindAllString(content, -1) {
		for _, m := range sourceURI.FindAllStringSubmatch(command, -1) {
			uids = append(uids, m[1])
		}
	}
	return uids
}

var (
	base64Data = regexp.MustCompile(`(?i)<Data>([0-9a-zA-Z+/=]{6,})</Data>`)

	normalizations = []struct {
		re   *regexp.Regexp
		repl string
	}{
		{regexp.MustCompile(`(?i) xmlns="syncml:SYNCML1.1"`), ` xmlns="syncml:SYNCML1.1"`},
		{regexp.MustCompile(`(?i)<DevID>.*?</DevID>`), `<DevID>IGNORED</DevID>`},
		{regexp.MustCompile(`(?i)<\?xml[^>]*>`), ``},
		{regexp.MustCompile(`(?i)<!DOCTYPE[^>]*>`), ``},
		{regexp.MustCompile(`(\r\n|\r|\n)DCREATED[^\r\n]*(\r\n|\r|\n)`), `$1`},
		{regexp.MustCompile(`(\r\n|\r|\n)LAST-MODIFIED[^\r\n]*(\r\n|\r|\n)`), `$1`},
		{regexp.MustCompile(`(\r\n|\r|\n)DTSTAMP[^\r\n]*(\r\n|\r|\n)`), `$1`},
		{regexp.MustCompile(`(\r\n|\r|\n)X-WR-CALNAME[^\r\n]*(\r\n|\r|\n)`), `$1`},
		{regexp.MustCompile(`(\r\n|\r|\n)PRIORITY[^\r\n]*(\r\n|\r|\n)`), `${1}PRIORITY: IGNORED$2`},
		{regexp.MustCompile(`(?s)<Data>\s*(.*?)\s*</Data>`), `<Data>$1</Data>`},
	}

	visibleLineBreaks = strings.NewReplacer("\r", `\r`, "\n", `\n`)
)

// normalize drops values that differ between runs without being errors:
// device ids, timestamps in entries and whitespace.
func normalize(s string) string {
	s = base64Data.ReplaceAllStringFunc(strings.TrimSpace(s), func(data string) string {
		encoded := base64Data.FindStringSubmatch(data)[1]
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return data
		}
		return "<Data>" + string(decoded) + "</Data>"
	})

	for _, n := range normalizations {
		s = n.re.ReplaceAllString(s, n.repl)
	}
	return visibleLineBreaks.Replace(strings.TrimSpace(s))
}

func compare(packet int, ref, got string) error {
	ref = normalize(ref)
	got = normalize(got)
	if strings.EqualFold(ref, got) {
		return nil
	}

	lowerRef, lowerGot := strings.ToLower(ref), strings.ToLower(got)
	pos := 0
	for pos < len(lowerRef) && pos < len(lowerGot) && lowerRef[pos] == lowerGot[pos] {
		pos++
	}

	return &Difference{
		Packet:   packet,
		Position: pos,
		Expected: ref,
		Got:      got,
	}
}
