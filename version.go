package formflow

// Version is the release of this build, set with
// -ldflags "-X github.com/aretw0/formflow.Version=v1.2.3".
var Version = "dev"
