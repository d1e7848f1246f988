/*
Package domain contains the core models of the form-flow engine.

It defines the graph a form is made of and the runtime snapshot of a response
session. The package is kept pure and free of I/O so adapters and evaluators
can share it.

# Key Entities

  - Node: A question with a declared type and a unique variable name.
  - Edge: A directed transition gated by conditions or a custom expression.
  - Form: Nodes, Edges and Settings of one form.
  - State: The runtime snapshot of a session (current node, answers, history).
  - ActionRequest: What the host should render or collect next.
*/
package domain
