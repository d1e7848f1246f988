/*
Package flow is the conditional navigation core of a form.

A form is a directed graph: nodes are questions, edges are transitions gated
by conditions over the answers collected so far. This package answers two
questions, both as pure functions of their inputs:

  - while responding: which question comes after this one (FindNextNode)
  - while editing: would this new edge introduce a loop (WouldCreateCycle)

Evaluation is fail-closed. Unknown variables, missing answers and values that
cannot be coerced make a comparison false instead of returning an error, so
navigation always yields a result. A nil next node means the flow is complete.
*/
package flow
