package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/avaliece/internal/domain/auth"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStatic(t *testing.T) {
	ctx := context.Background()

	Convey("Given the default credential pair", t, func() {
		v := auth.NewStatic("Formace", "Formace")

		Convey("Then only the exact pair passes", func() {
			So(v.Verify(ctx, "Formace", "Formace"), ShouldBeTrue)
			So(v.Verify(ctx, "formace", "Formace"), ShouldBeFalse)
			So(v.Verify(ctx, "Formace", "wrong"), ShouldBeFalse)
			So(v.Verify(ctx, "", ""), ShouldBeFalse)
			So(v.Verify(ctx, "Formace ", "Formace"), ShouldBeFalse)
		})
	})
}

func TestBcrypt(t *testing.T) {
	ctx := context.Background()

	Convey("Given a hashed password", t, func() {
		hash, err := auth.HashPassword("segredo")
		So(err, ShouldBeNil)

		v, err := auth.NewBcrypt("admin", hash)
		So(err, ShouldBeNil)

		Convey("Then the matching pair passes", func() {
			So(v.Verify(ctx, "admin", "segredo"), ShouldBeTrue)
		})

		Convey("Then a wrong password or user fails", func() {
			So(v.Verify(ctx, "admin", "segred0"), ShouldBeFalse)
			So(v.Verify(ctx, "root", "segredo"), ShouldBeFalse)
		})
	})

	Convey("Given a malformed hash", t, func() {
		_, err := auth.NewBcrypt("admin", "not-a-hash")

		Convey("Then construction fails", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given an empty password", t, func() {
		_, err := auth.HashPassword("")
		So(errors.Is(err, auth.ErrEmptyPassword), ShouldBeTrue)
	})
}
