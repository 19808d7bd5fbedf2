package viewer

import "context"

// queueVolume runs on the loop; only the newest pending value is kept.
func (s *Session) queueVolume(_ string, v int) {
	select {
	case <-s.persistCh:
	default:
	}
	s.persistCh <- v
}

func (s *Session) persistVolumes(ctx context.Context) {
	for {
		select {
		case v := <-s.persistCh:
			s.saveVolume(v)
		case <-ctx.Done():
			select {
			case v := <-s.persistCh:
				s.saveVolume(v)
			default:
			}
			return
		}
	}
}

func (s *Session) saveVolume(v int) {
	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()

	if err := s.volumes.SetVolume(ctx, s.viewerID, v); err != nil {
		s.logger.WarnContext(ctx, "failed to persist volume", "volume", v, "error", err)
	}
}
