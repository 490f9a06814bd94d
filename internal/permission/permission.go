package permission

import "app/internal/domain/model"

// 操作主体。未認証のときは Authenticated=false で ID=0。
type Actor struct {
	ID            int64
	Role          model.Role
	Authenticated bool
}

// Anonymous は未認証アクターを返す。
func Anonymous() Actor {
	return Actor{}
}

type Action string

const (
	ActionRead  Action = "READ"
	ActionWrite Action = "WRITE"
)

type ResourceKind string

const (
	KindCategory ResourceKind = "CATEGORY"
	KindService  ResourceKind = "SERVICE"
	KindCart     ResourceKind = "CART"
	KindOrder    ResourceKind = "ORDER"
	KindReview   ResourceKind = "REVIEW"
)

// 認可対象。OwnerIDは所有者スコープのリソース（Cart/Order/Review）だけ意味を持つ。
type Resource struct {
	Kind    ResourceKind
	OwnerID int64
}

type Reason string

const (
	ReasonNotOwner         Reason = "NOT_OWNER"
	ReasonInsufficientRole Reason = "INSUFFICIENT_ROLE"
	ReasonUnspecified      Reason = "UNSPECIFIED"
)

type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(r Reason) Decision {
	return Decision{Allowed: false, Reason: r}
}

// Authorize は (actor, action, resource) を許可/拒否に写す純関数。
// ルールは上から順に評価して最初に一致したものが勝つ。
// 所有チェックはここに一本化し、各ユースケースでは再実装しない。
func Authorize(a Actor, act Action, res Resource) Decision {
	// 1. 管理者は全部OK
	if a.Authenticated && a.Role == model.RoleAdmin {
		return allow()
	}

	// 2. カタログとレビューの読み取りは公開（未認証でも可）
	if act == ActionRead && isPublicKind(res.Kind) {
		return allow()
	}

	// 未認証はここから先は不可
	if !a.Authenticated {
		return deny(ReasonUnspecified)
	}

	// 3. 所有者スコープのリソースは本人のみ
	if isOwnerScoped(res.Kind) {
		if res.OwnerID == a.ID {
			return allow()
		}
		return deny(ReasonNotOwner)
	}

	// 4. カタログ書き込みは管理者だけ
	if act == ActionWrite && (res.Kind == KindCategory || res.Kind == KindService) {
		return deny(ReasonInsufficientRole)
	}

	// 5. 残りは全部拒否
	return deny(ReasonUnspecified)
}

func isPublicKind(k ResourceKind) bool {
	return k == KindCategory || k == KindService || k == KindReview
}

func isOwnerScoped(k ResourceKind) bool {
	return k == KindCart || k == KindOrder || k == KindReview
}
