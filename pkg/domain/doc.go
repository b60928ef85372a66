/*
Package domain contains the core types of the BIM action agent.

It defines the closed action catalog, the interpreted action and execution result
envelopes, the conversation context owned by a calling session, and the geometry and
scene descriptions exchanged with the viewer ports. The package is kept free of I/O so
every adapter and the engine can share it.

# Key Entities

  - ActionName: one entry of the closed capability catalog.
  - InterpretedAction: the (action, parameters) pair produced from free text.
  - ExecutionResult: the uniform envelope returned to callers.
  - ConversationContext: versioned, JSON-serializable per-session state.
*/
package domain
