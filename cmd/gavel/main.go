// Command gavel runs the federal court compliance engine.
//
// Usage:
//
//	# Start the engine daemon (rule watcher, reminder scanner, metrics)
//	gavel run
//
//	# Start with a custom config file
//	gavel run --config /etc/gavel/config.yaml
//
//	# Evaluate one docket event and apply its effects
//	gavel event --file filing.json
//
//	# Validate local rule files
//	gavel rules lint --file local_rules.yaml
//	gavel rules lint --dir rules/
//
//	# Compute a single deadline
//	gavel deadline --from 2026-03-02 --days 90
//	gavel deadline --from 2026-03-02 --days 21 --service mail
//
//	# Print version information
//	gavel version
package main

func main() {
	Execute()
}
