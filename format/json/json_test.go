package json

import (
	"encoding/json"
	"testing"

	"github.com/movsoftware/silkio/decoders/silk"
	"github.com/movsoftware/silkio/format"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() *silk.Record {
	var r silk.Record
	r.Clear()
	r.SetStartTime(1583020802500)
	r.SetElapsed(61000)
	r.SetSIPv4(0x0a010203)
	r.SetDIPv4(0xc0a80001)
	r.SetSPort(33766)
	r.SetDPort(443)
	r.SetProto(silk.IPProtoTCP)
	r.SetFlags(0x12)
	r.SetPkts(10)
	r.SetBytes(5000)
	r.SetSensor(21)
	r.SetFlowType(2)
	return &r
}

func TestFormat(t *testing.T) {
	d := &JsonDriver{}
	key, payload, err := d.Format(testRecord())
	require.NoError(t, err)
	assert.Equal(t, []byte("21"), key)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &got))

	assert.Equal(t, float64(1583020802500), got["time_flow_start_ms"])
	assert.Equal(t, float64(1583020863500), got["time_flow_end_ms"])
	assert.Equal(t, "10.1.2.3", got["src_addr"])
	assert.Equal(t, "192.168.0.1", got["dst_addr"])
	assert.Equal(t, float64(443), got["dst_port"])
	assert.Equal(t, "SA", got["tcp_flags"])
	assert.NotContains(t, got, "next_hop")
	assert.NotContains(t, got, "tcp_init_flags")
}

func TestFormatNextHop(t *testing.T) {
	r := testRecord()
	r.SetNhIPv4(0xC0A800FE)

	d := &JsonDriver{}
	_, payload, err := d.Format(r)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, "192.168.0.254", got["next_hop"])
}

func TestFormatExpandedFlags(t *testing.T) {
	r := testRecord()
	r.SetTCPState(silk.TCPStateExpanded)
	r.SetInitFlags(0x02)
	r.SetRestFlags(0x10)

	d := &JsonDriver{}
	_, payload, err := d.Format(r)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, "S", got["tcp_init_flags"])
	assert.Equal(t, "A", got["tcp_rest_flags"])
}

func TestFormatRejectsOtherPayloads(t *testing.T) {
	d := &JsonDriver{}
	_, _, err := d.Format(42)
	assert.ErrorIs(t, err, format.ErrNotFlowRecord)
}
