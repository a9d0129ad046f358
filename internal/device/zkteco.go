package device

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/wardtrack/wardtrack-backend/pkg/config"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
)

// ZKTeco push-protocol command codes
const (
	cmdConnect     = 1000
	cmdExit        = 1001
	cmdAckOK       = 2000
	cmdAckUnauth   = 2005
	cmdPrepareData = 1500
	cmdData        = 1501
	cmdFreeData    = 1502
	cmdDataWrrq    = 1503

	attRecordSize  = 40
	userRecordSize = 72
)

var tcpHeader = []byte{0x50, 0x50, 0x82, 0x7d}

// requests for cmdDataWrrq, taken from the terminal's data table layout
var (
	attLogRequest  = []byte{0x01, 0x0d, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	userWireFormat = []byte{0x01, 0x09, 0x00, 0x05, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
)

// ZKTerminal speaks the ZKTeco TCP protocol directly. Only the handful of
// commands the poller needs are implemented: session setup, draining the
// attendance log and reading the user table.
type ZKTerminal struct {
	addr    string
	timeout time.Duration
	logger  *logger.Logger

	conn      net.Conn
	sessionID uint16
	replyID   uint16
}

// NewZKTerminal creates a terminal client for the configured device
func NewZKTerminal(cfg *config.DeviceConfig, log *logger.Logger) *ZKTerminal {
	return &ZKTerminal{
		addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		timeout: cfg.ConnectTimeout,
		logger:  log.WithComponent("zkteco"),
	}
}

// Connect dials the terminal and opens a session
func (z *ZKTerminal) Connect(ctx context.Context) error {
	dialer := net.Dialer{Timeout: z.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", z.addr)
	if err != nil {
		return fmt.Errorf("failed to dial terminal %s: %w", z.addr, err)
	}
	z.conn = conn
	z.sessionID = 0
	z.replyID = 0

	cmd, _, err := z.exchange(cmdConnect, nil)
	if err != nil {
		conn.Close()
		z.conn = nil
		return err
	}
	if cmd == cmdAckUnauth {
		conn.Close()
		z.conn = nil
		return fmt.Errorf("terminal %s requires a comm key", z.addr)
	}
	if cmd != cmdAckOK {
		conn.Close()
		z.conn = nil
		return fmt.Errorf("terminal %s refused session: command %d", z.addr, cmd)
	}

	z.logger.Debug().Str("addr", z.addr).Uint16("session_id", z.sessionID).Msg("terminal session opened")
	return nil
}

// Disconnect closes the session and the socket
func (z *ZKTerminal) Disconnect() error {
	if z.conn == nil {
		return nil
	}
	_, _, err := z.exchange(cmdExit, nil)
	closeErr := z.conn.Close()
	z.conn = nil
	if err != nil {
		return err
	}
	return closeErr
}

// Attendances drains the terminal's attendance log
func (z *ZKTerminal) Attendances(ctx context.Context) ([]Record, error) {
	data, err := z.readTable(ctx, attLogRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to read attendance table: %w", err)
	}

	records := make([]Record, 0, len(data)/attRecordSize)
	for off := 0; off+attRecordSize <= len(data); off += attRecordSize {
		rec := data[off : off+attRecordSize]

		// layout: uid(2) user_id(24, NUL padded) status(1) time(4) punch(1) pad
		userID := cstring(rec[2:26])
		if userID == "" {
			continue
		}
		records = append(records, Record{
			UserID:    userID,
			Status:    int(rec[26]),
			Timestamp: decodeTime(binary.LittleEndian.Uint32(rec[27:31])),
		})
	}
	return records, nil
}

// Users reads the terminal's user table
func (z *ZKTerminal) Users(ctx context.Context) ([]User, error) {
	data, err := z.readTable(ctx, userWireFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to read user table: %w", err)
	}

	users := make([]User, 0, len(data)/userRecordSize)
	for off := 0; off+userRecordSize <= len(data); off += userRecordSize {
		rec := data[off : off+userRecordSize]

		// layout: uid(2) perm(1) password(8) name(24) card(4) group(1)
		// timezone(4) user_id(9...) with NUL padding throughout
		users = append(users, User{
			Name:   cstring(rec[11:35]),
			UserID: cstring(rec[48:57]),
		})
	}
	return users, nil
}

// readTable runs the prepare/data/free handshake for one data table. Small
// tables come back inline in the ack payload.
func (z *ZKTerminal) readTable(ctx context.Context, request []byte) ([]byte, error) {
	if z.conn == nil {
		return nil, fmt.Errorf("no open session")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = z.conn.SetDeadline(deadline)
	}

	cmd, payload, err := z.exchange(cmdDataWrrq, request)
	if err != nil {
		return nil, err
	}

	switch cmd {
	case cmdAckOK:
		// whole table fit into one reply, skip the 4-byte size prefix
		if len(payload) > 4 {
			return payload[4:], nil
		}
		return nil, nil
	case cmdPrepareData:
		if len(payload) < 4 {
			return nil, fmt.Errorf("malformed prepare-data reply")
		}
		total := int(binary.LittleEndian.Uint32(payload[:4]))

		var data []byte
		for len(data) < total {
			chunkCmd, chunk, err := z.receive()
			if err != nil {
				return nil, err
			}
			if chunkCmd != cmdData {
				return nil, fmt.Errorf("unexpected command %d while reading data", chunkCmd)
			}
			data = append(data, chunk...)
		}

		// trailing ack then an explicit buffer release
		if ackCmd, _, err := z.receive(); err != nil || ackCmd != cmdAckOK {
			if err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("terminal did not ack data transfer: command %d", ackCmd)
		}
		if _, _, err := z.exchange(cmdFreeData, nil); err != nil {
			return nil, err
		}
		return data, nil
	default:
		return nil, fmt.Errorf("terminal rejected table read: command %d", cmd)
	}
}

// exchange sends one command and reads one reply
func (z *ZKTerminal) exchange(command uint16, data []byte) (uint16, []byte, error) {
	if err := z.send(command, data); err != nil {
		return 0, nil, err
	}
	return z.receive()
}

func (z *ZKTerminal) send(command uint16, data []byte) error {
	z.replyID++

	payload := make([]byte, 8+len(data))
	binary.LittleEndian.PutUint16(payload[0:2], command)
	binary.LittleEndian.PutUint16(payload[4:6], z.sessionID)
	binary.LittleEndian.PutUint16(payload[6:8], z.replyID)
	copy(payload[8:], data)
	binary.LittleEndian.PutUint16(payload[2:4], checksum(payload))

	packet := make([]byte, 8+len(payload))
	copy(packet[0:4], tcpHeader)
	binary.LittleEndian.PutUint32(packet[4:8], uint32(len(payload)))
	copy(packet[8:], payload)

	if _, err := z.conn.Write(packet); err != nil {
		return fmt.Errorf("failed to write to terminal: %w", err)
	}
	return nil
}

func (z *ZKTerminal) receive() (uint16, []byte, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(z.conn, header); err != nil {
		return 0, nil, fmt.Errorf("failed to read reply header: %w", err)
	}
	if !bytes.Equal(header[0:4], tcpHeader) {
		return 0, nil, fmt.Errorf("malformed reply header")
	}

	size := binary.LittleEndian.Uint32(header[4:8])
	if size < 8 {
		return 0, nil, fmt.Errorf("reply too short: %d bytes", size)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(z.conn, payload); err != nil {
		return 0, nil, fmt.Errorf("failed to read reply payload: %w", err)
	}

	command := binary.LittleEndian.Uint16(payload[0:2])
	z.sessionID = binary.LittleEndian.Uint16(payload[4:6])
	return command, payload[8:], nil
}

// checksum is the ones-complement 16-bit word sum over the payload with the
// checksum field zeroed
func checksum(payload []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(payload); i += 2 {
		if i == 2 {
			continue
		}
		sum += uint32(binary.LittleEndian.Uint16(payload[i : i+2]))
	}
	if len(payload)%2 == 1 {
		sum += uint32(payload[len(payload)-1])
	}
	for sum > 0xffff {
		sum = (sum >> 16) + (sum & 0xffff)
	}
	return uint16(^sum) & 0xffff
}

// decodeTime unpacks the terminal's packed clock encoding
func decodeTime(v uint32) time.Time {
	second := int(v % 60)
	v /= 60
	minute := int(v % 60)
	v /= 60
	hour := int(v % 24)
	v /= 24
	day := int(v%31) + 1
	v /= 31
	month := int(v%12) + 1
	v /= 12
	year := int(v) + 2000

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}

func cstring(b []byte) string {
	s := string(b)
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
