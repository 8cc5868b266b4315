package server

import "sort"

func sortedUserIDs(room *Room) []string {
	ids := make([]string, 0, len(room.Users))
	for id := range room.Users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// roomUsersList renders the member list from one viewer's perspective.
// An empty viewerID produces the anonymous variant.
func roomUsersList(room *Room, viewerID string) []roomUserPayload {
	users := make([]roomUserPayload, 0, len(room.Users))
	for _, id := range sortedUserIDs(room) {
		user := room.Users[id]
		users = append(users, roomUserPayload{
			UserID:  user.ID,
			Name:    user.Name,
			Online:  user.Online,
			IsAdmin: user.IsAdmin,
			IsYou:   user.ID == viewerID,
		})
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Name < users[j].Name
	})
	return users
}

// roomUsersDeliveries sends every member their own view of the member
// list, each with its isYou marker set.
func roomUsersDeliveries(room *Room) []delivery {
	ds := make([]delivery, 0, len(room.Users))
	for id := range room.Users {
		ds = append(ds, toUser(id, evRoomUsers, roomUsersPayload{
			RoomID: room.Code,
			Users:  roomUsersList(room, id),
		}))
	}
	return ds
}

// projectionFor rebuilds the phase-specific view a reconnecting member
// needs to resume play.
func (s *Server) projectionFor(room *Room, userID string) []delivery {
	switch room.Phase {
	case phaseAnswering:
		return s.nextQuestionDeliveries(room, userID, nil)
	case phaseGenerating:
		return []delivery{toUser(userID, evQuestionsFinished, nil)}
	case phaseVoting:
		if room.Round == nil {
			// Between reveal and next round; the broadcast will follow.
			return nil
		}
		return []delivery{toUser(userID, evVoteStarted, voteStartedPayload{
			RoomID:         room.Code,
			SubjectProfile: room.Profiles[room.Round.SubjectID],
			Round:          room.VoteIndex + 1,
			Total:          len(room.VoteOrder),
			Users:          roomUsersList(room, userID),
			YourVote:       room.Round.Votes[userID],
		})}
	case phaseFinished:
		if room.Failed {
			return []delivery{toUser(userID, evProfilesError, nil)}
		}
		return []delivery{toUser(userID, evVotingFinished, votingFinishedPayload{
			RoomID:  room.Code,
			Results: scoreboard(room),
		})}
	}
	return nil
}

// snapshot is the REST view of a room. It exposes progress counters but
// never profile texts or per-player votes.
func snapshot(room *Room) map[string]any {
	return map[string]any{
		"roomId":           room.Code,
		"phase":            room.Phase,
		"failed":           room.Failed,
		"users":            roomUsersList(room, ""),
		"participants":     len(room.Participants),
		"profilesResolved": len(room.Profiles),
		"voteRound":        room.VoteIndex + 1,
		"voteTotal":        len(room.VoteOrder),
	}
}
