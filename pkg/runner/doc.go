/*
Package runner implements the interactive console loop around the agent.

It reads one request per line, sanitises it, executes it against a conversation
context and hands the result to a pluggable IOHandler. Text mode renders results
for humans; JSON mode emits one ExecutionResult per line for scripts. When a
ContextStore and session id are configured, the context is saved after every
request so a later run can resume the same session.

# Usage

	r := runner.NewRunner(
		runner.WithSessionID("facility-desk"),
		runner.WithStore(store),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx, agent); err != nil {
		log.Fatal(err)
	}
*/
package runner
