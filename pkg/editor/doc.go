/*
Package editor implements the authoring side of a form: the operations a
visual builder performs on the question graph.

Every operation takes a *domain.Form and edits it in place. Writes are
validated before they are applied, so a rejected edit leaves the form
untouched. Structural edits (adding, deleting or connecting questions)
recompute Settings.StartNodeID the same way the builder does: the first
question without incoming edges, otherwise the first question.

Service wraps the operations with a ports.FormStore and serialises writes per
form.
*/
package editor
