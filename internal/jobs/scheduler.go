package jobs

import (
	"context"
	"log"
	"time"

	"erpcore/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler owns background jobs that do not belong on a request path.
// Currently that is the overdue invoice sweep, which runs nightly so invoices
// past their due date flip to overdue without waiting for a payment event.
type Scheduler struct {
	scheduler gocron.Scheduler
	invoices  repositories.InvoiceRepository
}

func NewScheduler(invoices repositories.InvoiceRepository) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{scheduler: s, invoices: invoices}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 30, 0))),
		gocron.NewTask(s.sweepOverdueInvoices),
	)
	if err != nil {
		return err
	}
	s.scheduler.Start()
	log.Println("Scheduler started")
	return nil
}

func (s *Scheduler) sweepOverdueInvoices() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	count, err := s.invoices.SweepOverdue(ctx)
	if err != nil {
		log.Printf("overdue invoice sweep failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("marked %d invoices overdue", count)
	}
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
