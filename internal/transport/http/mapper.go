package http

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/shubhip58/Chattify/internal/core"
	"github.com/shubhip58/Chattify/internal/proto"
)

// dispatchInbound maps a wire event onto the session operation it requests.
// A non-nil return describes a malformed payload; domain errors are delivered
// through the client's event channel by the session itself.
func dispatchInbound(ctx context.Context, session *core.Session, inbound proto.Inbound) *proto.Error {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed join payload"}
		}
		if join.Room == "" {
			return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}
		}
		session.Join(join.Room)
		return nil

	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed send_message payload"}
		}
		if msg.Room == "" {
			return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}
		}
		// Domain-level failures (persistence, auth) surface via the event
		// channel; nothing more to report here.
		_ = session.SendMessage(ctx, msg.Room, msg.Msg, msg.SenderID.Int64(), msg.ReceiverID.Int64())
		return nil

	case proto.InboundTypeTyping:
		var typing proto.TypingData
		if err := json.Unmarshal(inbound.Data, &typing); err != nil {
			return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed typing payload"}
		}
		if typing.Room == "" {
			return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}
		}
		session.Typing(typing.Room, typing.Username)
		return nil

	case proto.InboundTypeStopTyping:
		var stop proto.StopTypingData
		if err := json.Unmarshal(inbound.Data, &stop); err != nil {
			return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed stop_typing payload"}
		}
		if stop.Room == "" {
			return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}
		}
		session.StopTyping(stop.Room)
		return nil

	default:
		return &proto.Error{Code: "invalid_message", Msg: "unknown event type"}
	}
}

// outboundFromEvent converts a core event into its wire representation.
func outboundFromEvent(event core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventUpdateUsers:
		users := make(proto.UpdateUsersData, len(event.Users))
		for id, name := range event.Users {
			users[strconv.FormatInt(id, 10)] = name
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUpdateUsers,
			Data:  users,
		}
	case core.EventReceiveMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceiveMessage,
			Data: proto.ReceiveMessageData{
				Msg:      event.Content,
				SenderID: event.SenderID,
			},
		}
	case core.EventUserTyping:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUserTyping,
			Data: proto.UserTypingData{
				Username: event.Username,
				Room:     event.Room,
			},
		}
	case core.EventStopTyping:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventStopTyping,
			Data: proto.StopTypingEventData{
				Room: event.Room,
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
