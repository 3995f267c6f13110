package printer

import (
	"bytes"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_KeyValueAlignment(t *testing.T) {
	doc := NewDocument(Width58mm)
	doc.KeyValue("Subtotal:", "Rs.400.00")

	out := doc.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte{ESC, '@'}))
	line := strings.TrimSuffix(string(out[2:]), "\n")
	assert.Len(t, line, Width58mm)
	assert.True(t, strings.HasSuffix(line, "Rs.400.00"))
}

func TestDocument_ItemLineWrapsLongNames(t *testing.T) {
	doc := NewDocument(Width58mm)
	doc.ItemLine(2, "Hyderabadi Chicken Dum Biryani Family Pack", "Rs.1200.00")

	lines := strings.Split(strings.TrimSuffix(string(doc.Bytes()[2:]), "\n"), "\n")
	require.Greater(t, len(lines), 1)
	assert.True(t, strings.HasPrefix(lines[0], "2x Hyderabadi"))
	assert.True(t, strings.HasSuffix(lines[0], "Rs.1200.00"))
	for _, l := range lines {
		assert.LessOrEqual(t, runeLen(l), Width58mm)
	}
	assert.True(t, strings.HasPrefix(lines[1], "   "))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"short"}, wrap("short", 10))
	assert.Equal(t, []string{"one two", "three"}, wrap("one two three", 8))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, wrap("abcdefghij", 4))
	assert.Equal(t, []string{"₹₹₹"}, wrap("₹₹₹", 3))
}

func TestNew(t *testing.T) {
	p, err := New(TypeNone, "", "")
	require.NoError(t, err)
	assert.False(t, p.IsConnected())

	_, err = New(TypeUSB, "", "")
	assert.Error(t, err)
	_, err = New(TypeNetwork, "", "")
	assert.Error(t, err)
	_, err = New("serial", "", "")
	assert.Error(t, err)
}

func TestNullPrinter_KeepsLastJob(t *testing.T) {
	p := NewNullPrinter()
	require.NoError(t, p.Print([]byte("first")))
	require.NoError(t, p.Print([]byte("second")))
	assert.Equal(t, []byte("second"), p.LastJob())
	assert.Equal(t, 2, p.Jobs())
}

func TestNetworkPrinter_Print(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	p := NewNetworkPrinter(ln.Addr().String())
	require.NoError(t, p.Print([]byte("bill")))
	assert.Equal(t, []byte("bill"), <-received)
}
