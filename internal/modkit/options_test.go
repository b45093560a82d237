package modkit

import "testing"

type sources struct{ name string }

func TestBuild(t *testing.T) {
	b := Build(WithName("convergence"), WithPrefix("convergence/"), WithPorts(sources{name: "fake"}))
	if b.Name != "convergence" || b.Prefix != "/convergence" {
		t.Fatalf("got %+v", b)
	}
	if s, ok := b.Ports.(sources); !ok || s.name != "fake" {
		t.Fatalf("ports %#v", b.Ports)
	}
}

func TestBuild_LaterOptionsWin(t *testing.T) {
	b := Build(WithName("auth"), WithPrefix("/auth"), WithName("login"), WithPrefix("//login//"))
	if b.Name != "login" || b.Prefix != "/login" {
		t.Fatalf("got %+v", b)
	}
	if Build().Prefix != "" || Build().Ports != nil {
		t.Fatalf("zero build must stay empty")
	}
}
