package simulator

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// Print writes a human readable report of r.
func (r *Result) Print(w io.Writer) {
	rule := strings.Repeat("-", 96)
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Simulation Results")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Run: %s\n", r.RunID)
	fmt.Fprintf(w, "Player: %s (%s), rotation %s\n", r.Player, r.Spec, r.Rotation)
	fmt.Fprintf(w, "Duration: %.0fs (mean fight length %.1fs)\n", r.Duration.Seconds(), r.MeanLength.Seconds())
	fmt.Fprintf(w, "Iterations: %d (%d aborted)\n", r.Iterations, r.AbortedIterations)
	for _, reason := range slices.Sorted(maps.Keys(r.AbortReasons)) {
		fmt.Fprintf(w, "  aborted %dx: %s\n", r.AbortReasons[reason], reason)
	}
	fmt.Fprintln(w)

	n := r.ValidIterations()
	if n == 0 {
		fmt.Fprintln(w, "No valid iterations.")
		return
	}
	fn := float64(n)

	fmt.Fprintf(w, "DPS: %.2f (min %.2f, max %.2f, stddev %.2f)\n", r.DPS, r.MinDPS, r.MaxDPS, r.DPSStdDev)
	fmt.Fprintf(w, "Damage: %.0f\n", r.TotalDamage)
	for _, name := range slices.Sorted(maps.Keys(r.ActorDamage)) {
		fmt.Fprintf(w, "  %-18s %12.0f\n", name, r.ActorDamage[name])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Action Breakdown (average per iteration):")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-18s %-22s | %7s | %12s | %6s | %8s | %8s | %8s | %6s\n",
		"Actor", "Action", "Execs", "Damage", "Share", "Avg", "Min", "Max", "Crit%")
	fmt.Fprintln(w, rule)
	for _, s := range r.Actions {
		if s.Executes == 0 && s.Damage == 0 {
			continue
		}
		share := 0.0
		if r.TotalDamage > 0 {
			share = s.Damage / fn / r.TotalDamage * 100
		}
		hits := s.Hits + s.Crits
		avg, crit := 0.0, 0.0
		if hits > 0 {
			avg = s.Damage / float64(hits)
			crit = float64(s.Crits) / float64(hits) * 100
		}
		fmt.Fprintf(w, "%-18s %-22s | %7.1f | %12.0f | %5.1f%% | %8.0f | %8.0f | %8.0f | %5.1f%%\n",
			s.Actor, s.Action, float64(s.Executes)/fn, s.Damage/fn, share, avg, s.MinDamage, s.MaxDamage, crit)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	if len(r.ManaGained)+len(r.ManaSpent) > 0 {
		fmt.Fprintln(w, "Mana (average per iteration):")
		for _, src := range slices.Sorted(maps.Keys(r.ManaGained)) {
			fmt.Fprintf(w, "  +%-20s %10.0f\n", src, r.ManaGained[src])
		}
		for _, src := range slices.Sorted(maps.Keys(r.ManaSpent)) {
			fmt.Fprintf(w, "  -%-20s %10.0f\n", src, r.ManaSpent[src])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Buffs:")
	fmt.Fprintf(w, "  %-20s %8s %8s %9s\n", "Buff", "Uptime", "Benefit", "Triggers")
	for _, b := range r.Buffs {
		if b.Triggers == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-20s %7.1f%% %7.1f%% %9.1f\n", b.Name, b.Uptime*100, b.Benefit*100, b.Triggers)
	}
}
