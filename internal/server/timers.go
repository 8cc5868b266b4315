package server

import "time"

// Two timers can be pending per room: the reveal delay between voting
// rounds and the empty-room grace delay. They are keyed separately so one
// never cancels the other.
func revealTimerKey(code string) string {
	return "reveal:" + code
}

func graceTimerKey(code string) string {
	return "grace:" + code
}

func (s *Server) scheduleTimer(key string, duration time.Duration, fn func()) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if existing, ok := s.timers[key]; ok {
		existing.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(duration, func() {
		// A fire can race a reschedule under the same key; only the
		// timer still registered may clean up and run.
		s.timersMu.Lock()
		current := s.timers[key] == timer
		if current {
			delete(s.timers, key)
		}
		s.timersMu.Unlock()
		if current {
			fn()
		}
	})
	s.timers[key] = timer
}

func (s *Server) cancelTimer(key string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}
}

func (s *Server) cancelRoomTimers(code string) {
	s.cancelTimer(revealTimerKey(code))
	s.cancelTimer(graceTimerKey(code))
}
