package rpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppRequestWireFormat(t *testing.T) {
	req := &AppRequest{Seq: 1, PlayerID: 2, PlayerToken: -1, GetTeamInfo: &AppEmpty{}}

	want := []byte{
		0x08, 0x01, // seq
		0x10, 0x02, // playerId
		0x18, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01, // playerToken = -1
		0x5a, 0x00, // getTeamInfo {}
	}
	assert.Equal(t, want, req.Marshal())

	var got AppRequest
	require.NoError(t, got.Unmarshal(want))
	assert.Equal(t, *req, got)
}

func TestAppMessageTeamChat(t *testing.T) {
	in := &AppMessage{Broadcast: &AppBroadcast{
		TeamMessage: &AppNewTeamMessage{Message: &AppTeamMessage{
			SteamID: 76561198000000001,
			Name:    "Speedy",
			Message: `!teams glue "Big Rollie" Speedy`,
			Color:   "#5af",
			Time:    1700000000,
		}},
	}}

	var out AppMessage
	require.NoError(t, out.Unmarshal(in.Marshal()))

	tm := out.GetBroadcast().GetTeamMessage()
	require.NotNil(t, tm)
	assert.Equal(t, in.Broadcast.TeamMessage.Message, tm)
	assert.Nil(t, out.GetResponse())
}

func TestAppMessageTeamInfoResponse(t *testing.T) {
	in := &AppMessage{Response: &AppResponse{
		Seq: 7,
		TeamInfo: &AppTeamInfo{
			LeaderSteamID: 1,
			Members: []*AppTeamMember{
				{SteamID: 1, Name: "Speedy", X: 10.5, Y: -3, IsOnline: true, IsAlive: true, SpawnTime: 5},
				{SteamID: 2, Name: "Rollie", DeathTime: 9},
			},
		},
	}}

	var out AppMessage
	require.NoError(t, out.Unmarshal(in.Marshal()))
	assert.Equal(t, uint32(7), out.GetResponse().Seq)
	assert.Equal(t, in.Response.TeamInfo, out.GetResponse().GetTeamInfo())
}

func TestAppMessageSkipsUnknownFields(t *testing.T) {
	// response { seq: 3, unknown string field 99, error { "boom" } }
	data := (&AppMessage{Response: &AppResponse{Seq: 3, Error: &AppError{Error: "boom"}}}).Marshal()
	inner := append(appendString(nil, 99, "ignored"), data[2:]...)
	data = appendBytes(nil, fieldMessageResponse, inner)

	var out AppMessage
	require.NoError(t, out.Unmarshal(data))
	assert.Equal(t, uint32(3), out.GetResponse().Seq)
	assert.Equal(t, "boom", out.GetResponse().GetError())
}

func TestAppMessageTruncated(t *testing.T) {
	data := (&AppMessage{Response: &AppResponse{Seq: 3}}).Marshal()
	var out AppMessage
	require.Error(t, out.Unmarshal(data[:len(data)-1]))
}
