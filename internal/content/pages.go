package content

import (
	"fmt"
	"strings"
)

type (
	Item struct {
		Title string
		Text  string
	}

	Doctor struct {
		ID        int
		Name      string
		Specialty string
		City      string
		Rating    float64
	}
)

var (
	Nourishment = []Item{
		{Title: "🥬 Leafy Greens", Text: "High in iron to replenish blood loss."},
		{Title: "🍫 Magnesium Boost", Text: "Dark chocolate & almonds reduce cramps."},
		{Title: "💧 Hydration Focus", Text: "Water prevents retention & headaches."},
		{Title: "🫚 Anti-Inflammatory", Text: "Ginger, turmeric & fatty fish."},
	}

	MindfulChoices = []Item{
		{Title: "Excessive Sodium", Text: "The main culprit behind painful bloating."},
		{Title: "Caffeine Overload", Text: "Can narrow blood vessels & worsen cramps."},
		{Title: "Alcohol Intake", Text: "Dehydrates and worsens mood fluctuations."},
	}

	ComfortRituals = []Item{
		{Title: "Thermal Relief", Text: "Applying heat to the lower abdomen relaxes uterine muscles, providing immediate ease."},
		{Title: "Gentle Flow Yoga", Text: "Low-impact movements stimulate circulation and release tension in the lower back."},
		{Title: "Herbal Infusions", Text: "Chamomile or Peppermint teas act as natural antispasmodics for both body and mind."},
	}

	Doctors = []Doctor{
		{ID: 1, Name: "Dr. Sarah Mitchell", Specialty: "Senior Gynecologist", City: "Manhattan, NY", Rating: 4.9},
		{ID: 2, Name: "Dr. Emily Chen", Specialty: "OB-GYN Specialist", City: "San Francisco, CA", Rating: 4.8},
		{ID: 3, Name: "Dr. Anita Roy", Specialty: "Reproductive Wellness", City: "Chicago, IL", Rating: 4.7},
		{ID: 4, Name: "Dr. Elena Rodriguez", Specialty: "Hormonal Health", City: "Miami, FL", Rating: 4.9},
	}

	Games  = []string{"Infinite Bubble Wrap", "Zen Garden Sketch", "Breathing Pulse"}
	Sounds = []string{"Soft Rain", "Ocean Waves", "Forest Bird", "Piano Solo"}
)

// SelfCarePage renders the self care guide.
func SelfCarePage() string {
	var sb strings.Builder
	sb.WriteString("Self Care\n\nNourishment:\n")
	writeItems(&sb, Nourishment)
	sb.WriteString("\nMindful Choices:\n")
	writeItems(&sb, MindfulChoices)
	sb.WriteString("\nComfort Rituals:\n")
	writeItems(&sb, ComfortRituals)
	return sb.String()
}

// DoctorsPage renders the specialist network.
func DoctorsPage() string {
	var sb strings.Builder
	sb.WriteString("Specialist Network\n\n")
	for _, d := range Doctors {
		sb.WriteString(fmt.Sprintf("%d. %s, %s (%s) ★ %.1f\n", d.ID, d.Name, d.Specialty, d.City, d.Rating))
	}
	return sb.String()
}

// FunZonePage renders the relaxation corner.
func FunZonePage() string {
	var sb strings.Builder
	sb.WriteString("Fun Zone\n\nMini games:\n")
	for _, g := range Games {
		sb.WriteString("• " + g + "\n")
	}
	sb.WriteString("\nCalming sounds:\n")
	for _, s := range Sounds {
		sb.WriteString("• " + s + "\n")
	}
	return sb.String()
}

func writeItems(sb *strings.Builder, items []Item) {
	for _, it := range items {
		sb.WriteString(fmt.Sprintf("• %s: %s\n", it.Title, it.Text))
	}
}
