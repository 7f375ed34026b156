package rpclient

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Подмножество rustplus.proto, которое нужно боту: запросы с seq,
// тим-чат и состав команды. Неизвестные поля при разборе пропускаются.

type AppEmpty struct{}

type AppSendMessage struct {
	Message string
}

type AppRequest struct {
	Seq             uint32
	PlayerID        uint64
	PlayerToken     int32
	GetTeamInfo     *AppEmpty
	SendTeamMessage *AppSendMessage
}

type AppMessage struct {
	Response  *AppResponse
	Broadcast *AppBroadcast
}

type AppResponse struct {
	Seq      uint32
	Success  *AppEmpty
	Error    *AppError
	TeamInfo *AppTeamInfo
}

type AppError struct {
	Error string
}

type AppBroadcast struct {
	TeamChanged *AppTeamChanged
	TeamMessage *AppNewTeamMessage
}

type AppTeamChanged struct {
	PlayerID uint64
	TeamInfo *AppTeamInfo
}

type AppNewTeamMessage struct {
	Message *AppTeamMessage
}

type AppTeamMessage struct {
	SteamID uint64
	Name    string
	Message string
	Color   string
	Time    uint32
}

type AppTeamInfo struct {
	LeaderSteamID uint64
	Members       []*AppTeamMember
}

type AppTeamMember struct {
	SteamID   uint64
	Name      string
	X, Y      float32
	IsOnline  bool
	SpawnTime uint32
	IsAlive   bool
	DeathTime uint32
}

// номера полей rustplus.proto
const (
	fieldRequestSeq             = 1
	fieldRequestPlayerID        = 2
	fieldRequestPlayerToken     = 3
	fieldRequestGetTeamInfo     = 11
	fieldRequestSendTeamMessage = 13

	fieldMessageResponse  = 1
	fieldMessageBroadcast = 2

	fieldResponseSeq      = 1
	fieldResponseSuccess  = 4
	fieldResponseError    = 5
	fieldResponseTeamInfo = 9

	fieldBroadcastTeamChanged = 4
	fieldBroadcastTeamMessage = 5
)

// ========================= getters (nil-safe) =========================

func (m *AppMessage) GetResponse() *AppResponse {
	if m == nil {
		return nil
	}
	return m.Response
}

func (m *AppMessage) GetBroadcast() *AppBroadcast {
	if m == nil {
		return nil
	}
	return m.Broadcast
}

func (r *AppResponse) GetTeamInfo() *AppTeamInfo {
	if r == nil {
		return nil
	}
	return r.TeamInfo
}

func (r *AppResponse) GetError() string {
	if r == nil || r.Error == nil {
		return ""
	}
	return r.Error.Error
}

func (b *AppBroadcast) GetTeamMessage() *AppTeamMessage {
	if b == nil || b.TeamMessage == nil {
		return nil
	}
	return b.TeamMessage.Message
}

func (ti *AppTeamInfo) GetMembers() []*AppTeamMember {
	if ti == nil {
		return nil
	}
	return ti.Members
}

// ========================= encode =========================

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendFloat(b []byte, num protowire.Number, v float32) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(v))
}

func appendEmpty(b []byte, num protowire.Number, v *AppEmpty) []byte {
	if v == nil {
		return b
	}
	return appendBytes(b, num, nil)
}

func (r *AppRequest) Marshal() []byte {
	var b []byte
	b = appendVarint(b, fieldRequestSeq, uint64(r.Seq))
	b = appendVarint(b, fieldRequestPlayerID, r.PlayerID)
	b = appendVarint(b, fieldRequestPlayerToken, uint64(int64(r.PlayerToken)))
	b = appendEmpty(b, fieldRequestGetTeamInfo, r.GetTeamInfo)
	if r.SendTeamMessage != nil {
		b = appendBytes(b, fieldRequestSendTeamMessage, appendString(nil, 1, r.SendTeamMessage.Message))
	}
	return b
}

func (m *AppMessage) Marshal() []byte {
	var b []byte
	if m.Response != nil {
		b = appendBytes(b, fieldMessageResponse, m.Response.marshal())
	}
	if m.Broadcast != nil {
		b = appendBytes(b, fieldMessageBroadcast, m.Broadcast.marshal())
	}
	return b
}

func (r *AppResponse) marshal() []byte {
	var b []byte
	b = appendVarint(b, fieldResponseSeq, uint64(r.Seq))
	b = appendEmpty(b, fieldResponseSuccess, r.Success)
	if r.Error != nil {
		b = appendBytes(b, fieldResponseError, appendString(nil, 1, r.Error.Error))
	}
	if r.TeamInfo != nil {
		b = appendBytes(b, fieldResponseTeamInfo, r.TeamInfo.marshal())
	}
	return b
}

func (bc *AppBroadcast) marshal() []byte {
	var b []byte
	if bc.TeamChanged != nil {
		var tc []byte
		tc = appendVarint(tc, 1, bc.TeamChanged.PlayerID)
		if bc.TeamChanged.TeamInfo != nil {
			tc = appendBytes(tc, 2, bc.TeamChanged.TeamInfo.marshal())
		}
		b = appendBytes(b, fieldBroadcastTeamChanged, tc)
	}
	if bc.TeamMessage != nil {
		var nm []byte
		if msg := bc.TeamMessage.Message; msg != nil {
			var tm []byte
			tm = appendVarint(tm, 1, msg.SteamID)
			tm = appendString(tm, 2, msg.Name)
			tm = appendString(tm, 3, msg.Message)
			tm = appendString(tm, 4, msg.Color)
			tm = appendVarint(tm, 5, uint64(msg.Time))
			nm = appendBytes(nm, 1, tm)
		}
		b = appendBytes(b, fieldBroadcastTeamMessage, nm)
	}
	return b
}

func (ti *AppTeamInfo) marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, ti.LeaderSteamID)
	for _, m := range ti.Members {
		var mb []byte
		mb = appendVarint(mb, 1, m.SteamID)
		mb = appendString(mb, 2, m.Name)
		mb = appendFloat(mb, 3, m.X)
		mb = appendFloat(mb, 4, m.Y)
		mb = appendVarint(mb, 5, protowire.EncodeBool(m.IsOnline))
		mb = appendVarint(mb, 6, uint64(m.SpawnTime))
		mb = appendVarint(mb, 7, protowire.EncodeBool(m.IsAlive))
		mb = appendVarint(mb, 8, uint64(m.DeathTime))
		b = appendBytes(b, 2, mb)
	}
	return b
}

// ========================= decode =========================

// field — одно значение поля: x для varint/fixed, v для length-delimited.
type field struct {
	num protowire.Number
	typ protowire.Type
	x   uint64
	v   []byte
}

// walk перебирает поля сообщения; группы и прочие типы пропускаются.
func walk(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.x, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.x = uint64(v)
		case protowire.Fixed64Type:
			f.x, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.v, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]

		if typ == protowire.StartGroupType {
			continue
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// Unmarshal разбирает AppMessage, пришедший от сервера.
func (m *AppMessage) Unmarshal(b []byte) error {
	*m = AppMessage{}
	return walk(b, func(f field) error {
		switch {
		case f.num == fieldMessageResponse && f.typ == protowire.BytesType:
			m.Response = &AppResponse{}
			return m.Response.unmarshal(f.v)
		case f.num == fieldMessageBroadcast && f.typ == protowire.BytesType:
			m.Broadcast = &AppBroadcast{}
			return m.Broadcast.unmarshal(f.v)
		}
		return nil
	})
}

// Unmarshal разбирает AppRequest (нужно для тестового сервера).
func (r *AppRequest) Unmarshal(b []byte) error {
	*r = AppRequest{}
	return walk(b, func(f field) error {
		switch f.num {
		case fieldRequestSeq:
			r.Seq = uint32(f.x)
		case fieldRequestPlayerID:
			r.PlayerID = f.x
		case fieldRequestPlayerToken:
			r.PlayerToken = int32(f.x)
		case fieldRequestGetTeamInfo:
			r.GetTeamInfo = &AppEmpty{}
		case fieldRequestSendTeamMessage:
			r.SendTeamMessage = &AppSendMessage{}
			return walk(f.v, func(sf field) error {
				if sf.num == 1 {
					r.SendTeamMessage.Message = string(sf.v)
				}
				return nil
			})
		}
		return nil
	})
}

func (r *AppResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case fieldResponseSeq:
			r.Seq = uint32(f.x)
		case fieldResponseSuccess:
			r.Success = &AppEmpty{}
		case fieldResponseError:
			r.Error = &AppError{}
			return walk(f.v, func(sf field) error {
				if sf.num == 1 {
					r.Error.Error = string(sf.v)
				}
				return nil
			})
		case fieldResponseTeamInfo:
			r.TeamInfo = &AppTeamInfo{}
			return r.TeamInfo.unmarshal(f.v)
		}
		return nil
	})
}

func (bc *AppBroadcast) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case fieldBroadcastTeamChanged:
			bc.TeamChanged = &AppTeamChanged{}
			return walk(f.v, func(sf field) error {
				switch sf.num {
				case 1:
					bc.TeamChanged.PlayerID = sf.x
				case 2:
					bc.TeamChanged.TeamInfo = &AppTeamInfo{}
					return bc.TeamChanged.TeamInfo.unmarshal(sf.v)
				}
				return nil
			})
		case fieldBroadcastTeamMessage:
			bc.TeamMessage = &AppNewTeamMessage{}
			return walk(f.v, func(sf field) error {
				if sf.num != 1 {
					return nil
				}
				bc.TeamMessage.Message = &AppTeamMessage{}
				return bc.TeamMessage.Message.unmarshal(sf.v)
			})
		}
		return nil
	})
}

func (tm *AppTeamMessage) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			tm.SteamID = f.x
		case 2:
			tm.Name = string(f.v)
		case 3:
			tm.Message = string(f.v)
		case 4:
			tm.Color = string(f.v)
		case 5:
			tm.Time = uint32(f.x)
		}
		return nil
	})
}

func (ti *AppTeamInfo) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			ti.LeaderSteamID = f.x
		case 2:
			m := &AppTeamMember{}
			ti.Members = append(ti.Members, m)
			return walk(f.v, func(sf field) error {
				switch sf.num {
				case 1:
					m.SteamID = sf.x
				case 2:
					m.Name = string(sf.v)
				case 3:
					m.X = math.Float32frombits(uint32(sf.x))
				case 4:
					m.Y = math.Float32frombits(uint32(sf.x))
				case 5:
					m.IsOnline = protowire.DecodeBool(sf.x)
				case 6:
					m.SpawnTime = uint32(sf.x)
				case 7:
					m.IsAlive = protowire.DecodeBool(sf.x)
				case 8:
					m.DeathTime = uint32(sf.x)
				}
				return nil
			})
		}
		return nil
	})
}
