// review-sweep runs the due-date sweeps once and exits. It is meant to
// be triggered by cron; each sweep is idempotent so overlapping runs
// are harmless.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/mustyusuf/publish-manuscript-portal-sub000/config"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/services"

	"github.com/joho/godotenv"
)

func main() {
	remind3 := flag.Bool("remind-3day", true, "send 3-day due-date reminders")
	remind7 := flag.Bool("remind-7day", true, "send 7-day due-date reminders")
	overdue := flag.Bool("overdue", true, "promote past-due reviews to overdue")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitDB()

	now := time.Now()
	reminders := services.NewReminderService(config.DB)

	if *remind7 {
		sent, err := reminders.SweepReminders(7, now)
		if err != nil {
			log.Printf("7-day reminder sweep failed: %v", err)
		} else {
			log.Printf("7-day reminder sweep sent %d reminders", sent)
		}
	}

	if *remind3 {
		sent, err := reminders.SweepReminders(3, now)
		if err != nil {
			log.Printf("3-day reminder sweep failed: %v", err)
		} else {
			log.Printf("3-day reminder sweep sent %d reminders", sent)
		}
	}

	if *overdue {
		promoted, err := reminders.SweepOverdue(now)
		if err != nil {
			log.Printf("overdue sweep failed: %v", err)
		} else {
			log.Printf("overdue sweep promoted %d reviews", promoted)
		}
	}
}
