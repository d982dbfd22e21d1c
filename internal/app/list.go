package app

import "fmt"

// printTargets writes the --list-targets table: stable, category-grouped,
// so repeated invocations are diffable.
func (a *App) printTargets() {
	lastCategory := ""
	for _, info := range a.catalog.Graph.ListTargets() {
		if info.Category != lastCategory {
			fmt.Fprintf(a.outW, "%s:\n", info.Category)
			lastCategory = info.Category
		}
		fmt.Fprintf(a.outW, "  %-12s %s\n", info.Name, info.Description)
	}
}

// printServices writes the --list-services table in registry order.
func (a *App) printServices() {
	for _, svc := range a.catalog.Registry.Services() {
		fmt.Fprintf(a.outW, "  %-16s %s\n", svc.Name, svc.Description)
	}
}
