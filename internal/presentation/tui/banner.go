package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Waymark.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Teal-to-blue gradient.
	s1 := termenv.String(` _    _                                  _    `).Foreground(p.Color("#2dd4bf"))
	s2 := termenv.String(`| |  | |                                | |   `).Foreground(p.Color("#22d3ee"))
	s3 := termenv.String(`| |  | | __ _ _   _ _ __ ___   __ _ _ __| | __`).Foreground(p.Color("#38bdf8"))
	s4 := termenv.String(`| |/\| |/ _' | | | | '_ ' _ \ / _' | '__| |/ /`).Foreground(p.Color("#60a5fa"))
	s5 := termenv.String(`\  /\  / (_| | |_| | | | | | | (_| | |  |   < `).Foreground(p.Color("#818cf8"))
	s6 := termenv.String(` \/  \/ \__,_|\__, |_| |_| |_|\__,_|_|  |_|\_\`).Foreground(p.Color("#a78bfa"))
	s7 := termenv.String(`               __/ |                          `).Foreground(p.Color("#c084fc"))
	s8 := termenv.String(`              |___/                           `).Foreground(p.Color("#c084fc"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println(s7)
	fmt.Println(s8)
	fmt.Println()
}
