package room

import (
	"context"

	"chatroom_server/internal/dto/respond"
	"chatroom_server/internal/model"
	"chatroom_server/pkg/constants"
)

// ListRecords 房间操作记录，最新的在前
func (s *Service) ListRecords(ctx context.Context, actor model.ActingUser, roomId string) ([]respond.RecordRespond, error) {
	if err := requireVerified(actor); err != nil {
		return nil, err
	}
	if _, err := s.findRoom(roomId); err != nil {
		return nil, err
	}
	if err := s.requireMember(roomId, actor.Uuid); err != nil {
		return nil, err
	}
	records, err := s.repos.Record.FindByRoom(roomId)
	if err != nil {
		return nil, storeErr(err, "")
	}
	rsp := make([]respond.RecordRespond, 0, len(records))
	for _, r := range records {
		rsp = append(rsp, respond.RecordRespond{
			Recording:  r.Recording,
			RecordTime: r.RecordTime.Format(constants.TIME_LAYOUT),
		})
	}
	return rsp, nil
}
