package server

import (
	"net/http"
	"sort"
	"time"

	"github.com/samber/lo"

	"buybox_console/internal/domain/entity"
	"buybox_console/pkg/httpx/reply"
	"buybox_console/pkg/rest"
)

type feedLister interface {
	Statuses() []entity.FeedStatus
}

type queueReporter interface {
	QueueDepth() int
	EstimatedWait() time.Duration
}

type FeedServer struct {
	poller feedLister
	queue  queueReporter
}

func NewFeedServer(poller feedLister, queue queueReporter) FeedServer {
	return FeedServer{
		poller: poller,
		queue:  queue,
	}
}

func (s FeedServer) getV1Feeds(w http.ResponseWriter, r *http.Request) error {
	statuses := s.poller.Statuses()

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].FeedID < statuses[j].FeedID
	})

	reply.JSON(r.Context(), w, http.StatusOK, lo.Map(statuses, func(f entity.FeedStatus, _ int) rest.FeedStatus {
		return newRESTFeedStatus(f)
	}))

	return nil
}

// getV1Queue reports the pricing API queue depth as an informational signal
// shown next to rate-limit errors.
func (s FeedServer) getV1Queue(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, rest.QueueInfo{
		Depth:           int64(s.queue.QueueDepth()),
		EstimatedWaitMs: s.queue.EstimatedWait().Milliseconds(),
	})

	return nil
}
